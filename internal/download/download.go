// Package download drives the external Ferium binary to fetch the
// resolved mod set, watching the mods directory while the download
// runs and verifying the final jar count.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the Ferium executable name resolved via PATH.
const DefaultBinary = "ferium"

// Options describe one download run.
type Options struct {
	Profile string
	Version string
	Loader  string
	ModsDir string
	Slugs   []string
}

// Result reports what a download run achieved.
type Result struct {
	Added  []string // slugs accepted into the profile
	Failed []string // slugs Ferium rejected

	// JarsDownloaded counts .jar files observed arriving during the
	// upgrade; JarsOnDisk is the final directory count.
	JarsDownloaded int
	JarsOnDisk     int

	// Complete is set when every added slug is accounted for on disk.
	Complete bool
}

// runner abstracts subprocess execution for testing.
type runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// Ferium wraps the ferium CLI.
type Ferium struct {
	bin    string
	run    runner
	logger *slog.Logger
}

// NewFerium creates a wrapper around the named binary. An empty name
// selects DefaultBinary.
func NewFerium(bin string, logger *slog.Logger) *Ferium {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Ferium{bin: bin, run: execRunner{}, logger: logger}
}

// Installed reports whether the binary is reachable on PATH.
func (f *Ferium) Installed() bool {
	_, err := exec.LookPath(f.bin)
	return err == nil
}

// Download creates a profile, adds each slug, and runs the upgrade.
// Slugs Ferium rejects are recorded and skipped; only infrastructure
// failures (profile creation, the upgrade itself) abort the run.
func (f *Ferium) Download(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Slugs) == 0 {
		return &Result{Complete: true}, nil
	}
	if err := os.MkdirAll(opts.ModsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mods dir: %w", err)
	}

	out, err := f.run.Run(ctx, f.bin, "profile", "create",
		"--name", opts.Profile,
		"--game-version", opts.Version,
		"--mod-loader", opts.Loader,
		"--output-dir", opts.ModsDir,
	)
	if err != nil {
		return nil, fmt.Errorf("ferium profile create failed: %w (%s)", err, firstLine(out))
	}

	result := &Result{}
	for _, slug := range opts.Slugs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if out, err := f.run.Run(ctx, f.bin, "add", slug); err != nil {
			f.logger.Warn("ferium rejected mod", "slug", slug, "output", firstLine(out))
			result.Failed = append(result.Failed, slug)
			continue
		}
		result.Added = append(result.Added, slug)
	}

	watcher, err := watchJars(ctx, opts.ModsDir, f.logger)
	if err != nil {
		f.logger.Warn("mods dir watch unavailable, relying on final count", "error", err)
	}

	out, upgradeErr := f.run.Run(ctx, f.bin, "upgrade")
	if watcher != nil {
		result.JarsDownloaded = watcher.stop()
	}
	if upgradeErr != nil {
		return result, fmt.Errorf("ferium upgrade failed: %w (%s)", upgradeErr, firstLine(out))
	}

	result.JarsOnDisk = countJars(opts.ModsDir)
	result.Complete = result.JarsOnDisk >= len(result.Added)
	f.logger.Info("download finished",
		"added", len(result.Added),
		"failed", len(result.Failed),
		"jars", result.JarsOnDisk,
		"complete", result.Complete,
	)
	return result, nil
}

// countJars counts .jar files directly in dir.
func countJars(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".jar") {
			count++
		}
	}
	return count
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
