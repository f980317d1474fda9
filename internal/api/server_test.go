package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/generate"
	"github.com/modsmith/modsmith-server/internal/resolve"
	"github.com/modsmith/modsmith-server/internal/service"
	"github.com/modsmith/modsmith-server/internal/util"
	"github.com/modsmith/modsmith-server/internal/validate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubSuggester struct {
	candidates []string
}

func (s stubSuggester) Suggest(context.Context, generate.Request, generate.History) ([]string, error) {
	return s.candidates, nil
}

func (s stubSuggester) Improve(context.Context, generate.Request, []string) []string {
	return nil
}

type stubEngine struct {
	known map[string]catalog.Entry
}

func (e stubEngine) Validate(_ context.Context, candidates []string, version, loader string) validate.Result {
	result := validate.Result{Version: version, Loader: loader}
	for _, candidate := range candidates {
		key := util.NormalizeKey(candidate)
		record := resolve.Record{Candidate: candidate, Key: key}
		if entry, ok := e.known[key]; ok {
			record.Entry = &entry
			record.Strategy = "exact-identifier"
			result.Resolved = append(result.Resolved, entry)
		} else {
			record.Strategy = resolve.StrategyExhausted
			record.Reason = resolve.ReasonNotInCatalog
		}
		result.Records = append(result.Records, record)
	}
	return result
}

func setupTestServer(t *testing.T) (humatest.TestAPI, *Server) {
	t.Helper()

	curation := service.NewCurationService(
		stubSuggester{candidates: []string{"sodium"}},
		stubEngine{known: map[string]catalog.Entry{
			"sodium": {ID: "a", Slug: "sodium", Title: "Sodium", Downloads: 1000},
		}},
		nil, nil, testLogger(),
	)
	sessions := service.NewSessionService(curation, testLogger())
	server := NewServer(sessions, nil, testLogger())

	return humatest.Wrap(t, server.api), server
}

func TestHealthCheck(t *testing.T) {
	api, _ := setupTestServer(t)

	resp := api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"healthy"`)
}

func TestGetMeta(t *testing.T) {
	api, _ := setupTestServer(t)

	resp := api.Get("/api/v1/meta")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Versions []string `json:"versions"`
		Loaders  []string `json:"loaders"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Contains(t, body.Versions, "1.20.1")
	assert.Equal(t, []string{"fabric", "forge", "quilt", "neoforge"}, body.Loaders)
}

func TestCurationLifecycle(t *testing.T) {
	api, _ := setupTestServer(t)

	resp := api.Post("/api/v1/curations", map[string]any{
		"mc_version": "1.20.1",
		"mod_loader": "fabric",
		"theme":      "performance",
	})
	require.Equal(t, http.StatusAccepted, resp.Code)

	var started struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &started))
	require.NotEmpty(t, started.SessionID)

	// Poll until the run completes.
	require.Eventually(t, func() bool {
		progress := api.Get("/api/v1/curations/" + started.SessionID + "/progress")
		if progress.Code != http.StatusOK {
			return false
		}
		var p struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(progress.Body.Bytes(), &p); err != nil {
			return false
		}
		return p.Status == service.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	result := api.Get("/api/v1/curations/" + started.SessionID + "/result")
	require.Equal(t, http.StatusOK, result.Code)

	var curation struct {
		TotalMods int `json:"totalMods"`
		Mods      []struct {
			Slug string `json:"slug"`
		} `json:"mods"`
	}
	require.NoError(t, json.Unmarshal(result.Body.Bytes(), &curation))
	assert.Equal(t, 1, curation.TotalMods)
	require.Len(t, curation.Mods, 1)
	assert.Equal(t, "sodium", curation.Mods[0].Slug)

	deleted := api.Delete("/api/v1/curations/" + started.SessionID)
	assert.Equal(t, http.StatusOK, deleted.Code)

	gone := api.Get("/api/v1/curations/" + started.SessionID + "/progress")
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestStartCuration_UnsupportedTarget(t *testing.T) {
	api, _ := setupTestServer(t)

	resp := api.Post("/api/v1/curations", map[string]any{
		"mc_version": "0.0.1",
		"mod_loader": "fabric",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/api/v1/curations", map[string]any{
		"mc_version": "1.20.1",
		"mod_loader": "rift",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProgress_UnknownSession(t *testing.T) {
	api, _ := setupTestServer(t)

	resp := api.Get("/api/v1/curations/unknown/progress")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "NOT_FOUND")
}

func TestResult_BeforeCompletion(t *testing.T) {
	_, server := setupTestServer(t)
	api := humatest.Wrap(t, server.api)

	resp := api.Post("/api/v1/curations", map[string]any{
		"mc_version": "1.20.1",
		"mod_loader": "fabric",
	})
	require.Equal(t, http.StatusAccepted, resp.Code)

	var started struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &started))

	// The run may already have finished; only a conflict before
	// completion is asserted when we catch it in flight.
	result := api.Get("/api/v1/curations/" + started.SessionID + "/result")
	assert.Contains(t, []int{http.StatusOK, http.StatusConflict}, result.Code)
}
