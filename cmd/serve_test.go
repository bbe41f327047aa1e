package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalforge/datamart/internal/catalog"
	"github.com/signalforge/datamart/internal/config"
	"github.com/signalforge/datamart/internal/pipeline"
	"github.com/signalforge/datamart/internal/pricing"
	"github.com/signalforge/datamart/internal/store"
	"github.com/signalforge/datamart/internal/vertical"
)

// newTestEnv wires a pipeline environment over a temp data dir so the API
// can be exercised without any command-line plumbing.
func newTestEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewCSVStore(dir)
	require.NoError(t, err)
	part, err := pipeline.NewPartitioner(dir)
	require.NoError(t, err)

	reg := vertical.NewRegistry()
	merger := pipeline.NewMerger(st, 3)
	ledger := pipeline.NewLedger(dir)

	return &pipelineEnv{
		Registry: reg,
		Store:    st,
		Pipeline: pipeline.New(reg, merger, part, ledger, 2),
		Builder:  catalog.NewBuilder(dir, pricing.New(config.PricingConfig{}), reg),
		Ledger:   ledger,
	}
}

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	code, body := getJSON(t, newRouter(newTestEnv(t)), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestCatalog_EmptyDataDir(t *testing.T) {
	code, body := getJSON(t, newRouter(newTestEnv(t)), "/api/catalog")
	require.Equal(t, http.StatusOK, code)

	status, ok := body["system_status"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Never", status["last_update"])

	verticals, ok := body["verticals"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, verticals, 5)
	assert.Contains(t, verticals, "Fintech Growth Intelligence")
}

func TestCatalog_AfterPipelineRun(t *testing.T) {
	env := newTestEnv(t)
	run := env.Pipeline.Run(context.Background(), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "complete", string(run.Status))

	code, body := getJSON(t, newRouter(env), "/api/catalog")
	require.Equal(t, http.StatusOK, code)

	status := body["system_status"].(map[string]any)
	assert.Equal(t, "Premium Data Pipeline Active", status["status"])
	assert.NotEqual(t, "Never", status["last_update"])

	verticals := body["verticals"].(map[string]any)
	fintech, ok := verticals["Fintech Growth Intelligence"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, fintech)

	first := fintech[0].(map[string]any)
	assert.Equal(t, "BUNDLE", first["type"])
	assert.Equal(t, "All Time", first["period"])
	assert.Equal(t, "fintech_growth_digest_FULL.csv", first["filename"])
	assert.Equal(t, "/download/fintech_growth_digest_FULL.csv", first["download_url"])
	assert.NotZero(t, first["price"])
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t)
	env.Pipeline.Run(context.Background(), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))

	code, body := getJSON(t, newRouter(env), "/api/preview/fintech")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "fintech", body["vertical"])
	assert.NotEmpty(t, body["history"])

	latest, ok := body["latest"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, latest, "company")
	assert.Contains(t, latest, "date")

	// history is capped
	history := body["history"].([]any)
	assert.LessOrEqual(t, len(history), 30)
	assert.Positive(t, body["total_rows"])
}

func TestPreview_UnknownVertical(t *testing.T) {
	code, body := getJSON(t, newRouter(newTestEnv(t)), "/api/preview/bogus")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Vertical not found", body["error"])
}

func TestPreview_NoDataYet(t *testing.T) {
	code, body := getJSON(t, newRouter(newTestEnv(t)), "/api/preview/fintech")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Data not generated yet", body["error"])
}

func TestFiles(t *testing.T) {
	env := newTestEnv(t)
	env.Pipeline.Run(context.Background(), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))

	code, body := getJSON(t, newRouter(env), "/api/files/esg")
	require.Equal(t, http.StatusOK, code)

	files, ok := body["files"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, files)
	for _, f := range files {
		name := f.(map[string]any)["filename"].(string)
		assert.Contains(t, name, "esg_sentiment_tracker")
	}
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)
	env.Pipeline.Run(context.Background(), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	router := newRouter(env)

	req := httptest.NewRequest(http.MethodGet, "/download/fintech_growth_digest_FULL.csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "fintech_growth_digest_FULL.csv")
	assert.Contains(t, rec.Body.String(), "company")
}

func TestDownload_NotFound(t *testing.T) {
	code, body := getJSON(t, newRouter(newTestEnv(t)), "/download/fintech_growth_digest_2099_01.csv")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "File not found", body["error"])
}

func TestDownload_InvalidFilename(t *testing.T) {
	code, body := getJSON(t, newRouter(newTestEnv(t)), "/download/status.json")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid filename", body["error"])
}

func TestCORSHeaders(t *testing.T) {
	router := newRouter(newTestEnv(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
