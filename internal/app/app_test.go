package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/maintenance"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/r2client"
	"github.com/garyellow/xoso-linebot-go/internal/ratelimit"
	"github.com/garyellow/xoso-linebot-go/internal/results"
	"github.com/garyellow/xoso-linebot-go/internal/session"
	"github.com/garyellow/xoso-linebot-go/internal/storage"
)

// setupTestApp creates a minimal Application for testing endpoints
func setupTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()

	// A file database per test keeps parallel tests isolated.
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	log := logger.NewWithWriter("error", io.Discard)

	if cfg == nil {
		cfg = &config.Config{}
	}

	return &Application{
		cfg:      cfg,
		db:       db,
		metrics:  m,
		registry: registry,
		logger:   log,
		sessions: session.NewStore(10, time.Hour, m),
		loader:   results.NewLoader(db, results.Options{CSVPath: cfg.ResultsCSVPath, Metrics: m, Logger: log}),
	}
}

func serve(t *testing.T, app *Application, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	app.newRouter().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)

	w := serve(t, app, http.MethodGet, "/livez")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decode(t, w)["status"])
}

func TestLivenessCheckAlwaysSucceeds(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)
	_ = app.db.Close()

	w := serve(t, app, http.MethodGet, "/livez")
	assert.Equal(t, http.StatusOK, w.Code, "liveness must not depend on the database")
}

func TestReadinessCheckHealthy(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)
	require.NoError(t, app.db.SaveResultsBatch(context.Background(), []*storage.DrawResult{
		{Date: time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC), Special: "12345"},
	}))

	w := serve(t, app, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, "ready", response["status"])
	assert.Equal(t, "connected", response["database"])
	assert.InDelta(t, 1, response["results"], 0)

	features, ok := response["features"].(map[string]any)
	require.True(t, ok, "Expected features in response")
	assert.Equal(t, false, features["results_source"])
}

// TestReadinessCheckDatabaseFailure verifies /readyz returns 503 when database ping fails
func TestReadinessCheckDatabaseFailure(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)
	require.NoError(t, app.db.Close())

	w := serve(t, app, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	response := decode(t, w)
	assert.Equal(t, "not ready", response["status"])
	assert.Equal(t, "database unavailable", response["reason"])
}

func TestRouterHeadersAndRedirect(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)

	w := serve(t, app, http.MethodGet, "/")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, repositoryURL, w.Header().Get("Location"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRouterKeepsUpstreamRequestID(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Correlation-Id", "corr-42")
	w := httptest.NewRecorder()
	app.newRouter().ServeHTTP(w, req)

	assert.Equal(t, "corr-42", w.Header().Get("X-Request-Id"))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	open := setupTestApp(t, nil)
	w := serve(t, open, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "xoso_")

	guarded := setupTestApp(t, &config.Config{
		MetricsAuthEnabled: true,
		MetricsUsername:    "prometheus",
		MetricsPassword:    "secret",
	})
	w = serve(t, guarded, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRouteAbsentWithoutHandler(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)

	w := serve(t, app, http.MethodPost, "/webhook")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeedResultsFromCSV(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "xsmb.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("date,DB,G1\n2024-07-25,1234,56789\n24/07/2024,98765,11111\n"), 0o600))

	app := setupTestApp(t, &config.Config{ResultsCSVPath: csvPath})
	app.seedResults(context.Background())

	n, err := app.db.CountResults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 1, testutil.ToFloat64(app.metrics.JobRunsTotal.WithLabelValues("results_seed", "success")), 0)
}

func TestSeedResultsWithoutSource(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)

	app.seedResults(context.Background())

	assert.Zero(t, testutil.CollectAndCount(app.metrics.JobRunsTotal))
}

func TestRecordGauges(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, nil)
	app.userLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{Name: "chat", Burst: 5, RefillRate: 1})
	t.Cleanup(app.userLimiter.Stop)

	ctx := context.Background()
	require.NoError(t, app.db.SaveResultsBatch(ctx, []*storage.DrawResult{
		{Date: time.Date(2024, 7, 24, 0, 0, 0, 0, time.UTC), Special: "00001"},
		{Date: time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC), Special: "00002"},
	}))
	app.sessions.Set("C1", session.AwaitDao())
	app.userLimiter.Allow("C1")
	app.userLimiter.Allow("C2")

	app.recordGauges(ctx)

	assert.InDelta(t, 2, testutil.ToFloat64(app.metrics.ResultsRows), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(app.metrics.SessionsActive), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(app.metrics.RateLimiterUsers), 0)
}

// memoryObjects is a single-object conditional store for the refresh schedule.
type memoryObjects struct {
	body []byte
	etag string
}

func (m *memoryObjects) Download(context.Context, string) (io.ReadCloser, string, error) {
	if m.body == nil {
		return nil, "", r2client.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(m.body)), m.etag, nil
}

func (m *memoryObjects) PutObjectIfNotExists(_ context.Context, _ string, body io.Reader, _ string) (bool, string, error) {
	if m.body != nil {
		return false, "", nil
	}
	m.body, _ = io.ReadAll(body)
	m.etag = "v1"
	return true, m.etag, nil
}

func (m *memoryObjects) PutObjectIfMatch(_ context.Context, _ string, body io.Reader, etag, _ string) (bool, string, error) {
	if etag != m.etag {
		return false, "", nil
	}
	m.body, _ = io.ReadAll(body)
	m.etag += "+"
	return true, m.etag, nil
}

func TestRefreshNotDue(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, &config.Config{ResultsRefreshInterval: time.Hour})
	ctx := context.Background()

	assert.False(t, app.refreshNotDue(ctx), "no schedule means always refresh")

	schedule, err := maintenance.NewScheduleStore(&memoryObjects{}, "results/xsmb.csv.zst.schedule.json", time.Second)
	require.NoError(t, err)
	app.schedule = schedule
	assert.False(t, app.refreshNotDue(ctx), "missing schedule is due")

	require.NoError(t, schedule.MarkRefreshed(ctx, 1, "2024-07-25"))
	assert.False(t, app.refreshNotDue(ctx), "local database is behind the recorded draw")

	require.NoError(t, app.db.SaveResultsBatch(ctx, []*storage.DrawResult{
		{Date: time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC), Special: "12345"},
	}))
	assert.True(t, app.refreshNotDue(ctx))
	assert.Equal(t, "2024-07-25", app.latestDrawDate(ctx))
}
