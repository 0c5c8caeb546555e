package setup

import (
	"encoding/json"
	"io"
	"log/slog"
	"memo-store/config"
	"memo-store/metrics"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(driver string) *config.Config {
	return &config.Config{
		Env:            "test",
		StoreDriver:    driver,
		MetricsEnabled: true,
		CORSOrigins:    "*",
	}
}

func TestInitStore(t *testing.T) {
	tests := []struct {
		name      string
		cfg       func(t *testing.T) *config.Config
		wantError bool
	}{
		{
			name: "Memory",
			cfg:  func(t *testing.T) *config.Config { return testConfig(config.DriverMemory) },
		},
		{
			name: "SQLite",
			cfg: func(t *testing.T) *config.Config {
				cfg := testConfig(config.DriverSQLite)
				cfg.DBPath = filepath.Join(t.TempDir(), "memos.db")
				return cfg
			},
		},
		{
			name: "Memory with cache",
			cfg: func(t *testing.T) *config.Config {
				cfg := testConfig(config.DriverMemory)
				cfg.CacheSize = 16
				return cfg
			},
		},
		{
			name: "Postgres without url",
			cfg: func(t *testing.T) *config.Config {
				return testConfig(config.DriverPostgres)
			},
			wantError: true,
		},
		{
			name: "Unknown driver",
			cfg: func(t *testing.T) *config.Config {
				return testConfig("mongo")
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := InitStore(t.Context(), tt.cfg(t), metrics.New(), testLogger())
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { Shutdown(store, testLogger()) })

			memo, err := store.Create(t.Context(), "hello")
			require.NoError(t, err)
			found, err := store.FindByID(t.Context(), memo.ID)
			require.NoError(t, err)
			assert.Equal(t, "hello", found.Text)
		})
	}
}

func TestServer_EndToEnd(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	logger := testLogger()
	collector := metrics.New()

	store, err := InitStore(t.Context(), cfg, collector, logger)
	require.NoError(t, err)
	t.Cleanup(func() { Shutdown(store, logger) })

	application := InitApp(store, collector, logger)
	require.NoError(t, SeedMemos(t.Context(), application, 25))

	fiberApp := NewFiberApp(cfg, logger)
	ApplyMiddleware(fiberApp, cfg, collector, logger)
	RegisterRoutes(fiberApp, application)

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/api/memos?size=10&sort=id,desc", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var page struct {
		Memos []struct {
			ID int64 `json:"id"`
		} `json:"memos"`
		TotalElements int64 `json:"total_elements"`
		TotalPages    int64 `json:"total_pages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Memos, 10)
	assert.EqualValues(t, 25, page.Memos[0].ID)
	assert.EqualValues(t, 25, page.TotalElements)
	assert.EqualValues(t, 3, page.TotalPages)

	// Seeding again is a no-op on a populated store
	require.NoError(t, SeedMemos(t.Context(), application, 25))

	resp, err = fiberApp.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = fiberApp.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `memo_store_operations_total{operation="create",result="ok"} 25`))
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/api/memos",status="200"} 1`)
}

func TestServer_UnknownRoute(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.MetricsEnabled = false
	logger := testLogger()

	store, err := InitStore(t.Context(), cfg, nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { Shutdown(store, logger) })

	fiberApp := NewFiberApp(cfg, logger)
	ApplyMiddleware(fiberApp, cfg, nil, logger)
	RegisterRoutes(fiberApp, InitApp(store, nil, logger))

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}
