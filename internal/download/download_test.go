package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeRunner scripts subprocess outcomes and records invocations.
type fakeRunner struct {
	calls [][]string

	// failAdds holds slugs whose `ferium add` fails.
	failAdds map[string]bool
	// upgradeJars are written into modsDir when upgrade runs.
	upgradeJars []string
	modsDir     string
	upgradeErr  error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))

	switch args[0] {
	case "add":
		if f.failAdds[args[1]] {
			return "error: mod not found", fmt.Errorf("exit status 1")
		}
		return "added", nil
	case "upgrade":
		if f.upgradeErr != nil {
			return "download failed", f.upgradeErr
		}
		for _, jar := range f.upgradeJars {
			if err := os.WriteFile(filepath.Join(f.modsDir, jar), []byte("jar"), 0o644); err != nil {
				return "", err
			}
		}
		// Give fsnotify a moment to deliver events.
		time.Sleep(50 * time.Millisecond)
		return "done", nil
	}
	return "", nil
}

func newTestFerium(run runner) *Ferium {
	return &Ferium{bin: "ferium", run: run, logger: testLogger()}
}

func TestDownload(t *testing.T) {
	modsDir := filepath.Join(t.TempDir(), "mods")
	run := &fakeRunner{
		modsDir:     modsDir,
		upgradeJars: []string{"sodium.jar", "lithium.jar"},
	}
	f := newTestFerium(run)

	result, err := f.Download(context.Background(), Options{
		Profile: "perf-pack",
		Version: "1.20.1",
		Loader:  "fabric",
		ModsDir: modsDir,
		Slugs:   []string{"sodium", "lithium"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"sodium", "lithium"}, result.Added)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 2, result.JarsOnDisk)
	assert.True(t, result.Complete)

	require.NotEmpty(t, run.calls)
	assert.Equal(t, []string{"ferium", "profile", "create",
		"--name", "perf-pack",
		"--game-version", "1.20.1",
		"--mod-loader", "fabric",
		"--output-dir", modsDir,
	}, run.calls[0])
	last := run.calls[len(run.calls)-1]
	assert.Equal(t, "upgrade", last[1])
}

func TestDownload_RejectedSlugSkipped(t *testing.T) {
	modsDir := filepath.Join(t.TempDir(), "mods")
	run := &fakeRunner{
		modsDir:     modsDir,
		failAdds:    map[string]bool{"imaginary-mod": true},
		upgradeJars: []string{"sodium.jar"},
	}
	f := newTestFerium(run)

	result, err := f.Download(context.Background(), Options{
		Profile: "pack",
		Version: "1.20.1",
		Loader:  "fabric",
		ModsDir: modsDir,
		Slugs:   []string{"sodium", "imaginary-mod"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"sodium"}, result.Added)
	assert.Equal(t, []string{"imaginary-mod"}, result.Failed)
	assert.True(t, result.Complete)
}

func TestDownload_UpgradeFailure(t *testing.T) {
	modsDir := filepath.Join(t.TempDir(), "mods")
	run := &fakeRunner{
		modsDir:    modsDir,
		upgradeErr: fmt.Errorf("exit status 1"),
	}
	f := newTestFerium(run)

	result, err := f.Download(context.Background(), Options{
		Profile: "pack",
		Version: "1.20.1",
		Loader:  "fabric",
		ModsDir: modsDir,
		Slugs:   []string{"sodium"},
	})

	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []string{"sodium"}, result.Added)
	assert.False(t, result.Complete)
}

func TestDownload_NoSlugs(t *testing.T) {
	f := newTestFerium(&fakeRunner{})

	result, err := f.Download(context.Background(), Options{ModsDir: t.TempDir()})

	require.NoError(t, err)
	assert.True(t, result.Complete)
}

func TestCountJars(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jar"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.JAR"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jar"), 0o755))

	assert.Equal(t, 2, countJars(dir))
}

func TestWatchJars(t *testing.T) {
	dir := t.TempDir()
	w, err := watchJars(context.Background(), dir, testLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sodium.jar"), []byte("jar"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.seen) == 1
	}, 2*time.Second, 10*time.Millisecond)

	count := w.stop()
	assert.Equal(t, 1, count)
	for file := range w.seen {
		assert.True(t, strings.HasSuffix(file, "sodium.jar"))
	}
}
