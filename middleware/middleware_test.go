package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLoggedApp mounts memo-shaped routes behind StructuredLogger; each
// handler answers with the status passed in the "status" query parameter
func setupLoggedApp(buf *bytes.Buffer) *fiber.App {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	respond := func(c *fiber.Ctx) error {
		if c.Query("fail") != "" {
			return errors.New("database is locked")
		}
		return c.SendStatus(c.QueryInt("status", fiber.StatusOK))
	}

	app := fiber.New()
	app.Use(StructuredLogger(logger))
	app.Get("/health", respond)
	app.Post("/api/memos", respond)
	app.Get("/api/memos", respond)
	app.Get("/api/memos/:id", respond)
	app.Put("/api/memos/:id", respond)
	app.Delete("/api/memos/:id", respond)
	app.Get("/other", respond)
	return app
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestStructuredLogger(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		target        string
		expectedLevel string
		expectedMsg   string
		expectedAttrs map[string]interface{}
		absentAttrs   []string
	}{
		{
			name:          "Memo created",
			method:        http.MethodPost,
			target:        "/api/memos?status=201",
			expectedLevel: "INFO",
			expectedMsg:   "memo create completed",
			expectedAttrs: map[string]interface{}{"operation": "create", "status": float64(201)},
			absentAttrs:   []string{"memo_id"},
		},
		{
			name:          "Missing memo stays at info",
			method:        http.MethodGet,
			target:        "/api/memos/42?status=404",
			expectedLevel: "INFO",
			expectedMsg:   "memo not found",
			expectedAttrs: map[string]interface{}{"operation": "get", "memo_id": "42"},
		},
		{
			name:          "Rejected update",
			method:        http.MethodPut,
			target:        "/api/memos/7?status=400",
			expectedLevel: "WARN",
			expectedMsg:   "memo update rejected",
			expectedAttrs: map[string]interface{}{"operation": "update", "memo_id": "7"},
		},
		{
			name:          "List carries paging",
			method:        http.MethodGet,
			target:        "/api/memos?page=2&size=10&sort=text,desc&sort=id,asc",
			expectedLevel: "INFO",
			expectedMsg:   "memo list completed",
			expectedAttrs: map[string]interface{}{
				"operation": "list",
				"page":      "2",
				"size":      "10",
				"sort":      "text,desc;id,asc",
			},
		},
		{
			name:          "Handler error",
			method:        http.MethodDelete,
			target:        "/api/memos/3?fail=1",
			expectedLevel: "ERROR",
			expectedMsg:   "server error",
			expectedAttrs: map[string]interface{}{
				"operation": "delete",
				"status":    float64(500),
				"error":     "database is locked",
			},
		},
		{
			name:          "Health probe drops to debug",
			method:        http.MethodGet,
			target:        "/health",
			expectedLevel: "DEBUG",
			expectedMsg:   "probe completed",
			absentAttrs:   []string{"operation"},
		},
		{
			name:          "Other client error",
			method:        http.MethodGet,
			target:        "/other?status=429",
			expectedLevel: "WARN",
			expectedMsg:   "client error",
			absentAttrs:   []string{"operation", "memo_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			app := setupLoggedApp(&buf)

			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

			entry := lastEntry(t, &buf)
			assert.Equal(t, tt.expectedLevel, entry["level"])
			assert.Equal(t, tt.expectedMsg, entry["msg"])
			assert.Equal(t, resp.Header.Get("X-Request-ID"), entry["request_id"])
			for k, v := range tt.expectedAttrs {
				assert.Equal(t, v, entry[k], k)
			}
			for _, k := range tt.absentAttrs {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestStructuredLogger_SetsRequestIDLocal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(StructuredLogger(logger))
	app.Get("/", func(c *fiber.Ctx) error {
		requestID, _ := c.Locals("requestID").(string)
		return c.SendString(requestID)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := new(bytes.Buffer)
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), body.String())
}

func TestSecurity(t *testing.T) {
	app := fiber.New()
	app.Use(Security())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'none'")
}
