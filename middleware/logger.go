package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// operations names memo API routes by the store operation they drive
var operations = map[string]string{
	fiber.MethodPost + " /api/memos":       "create",
	fiber.MethodGet + " /api/memos":        "list",
	fiber.MethodGet + " /api/memos/:id":    "get",
	fiber.MethodPut + " /api/memos/:id":    "update",
	fiber.MethodDelete + " /api/memos/:id": "delete",
}

// StructuredLogger tags each request with an id and logs one line per request.
// Memo routes are logged by operation; a missing memo is an expected outcome
// and stays at info, probes of /health and /metrics drop to debug.
func StructuredLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.New().String()

		c.Locals("requestID", requestID)
		c.Set("X-Request-ID", requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		logAttrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.IP()),
			slog.String("user_agent", c.Get("User-Agent")),
		}

		op, isMemoRoute := operations[c.Method()+" "+c.Route().Path]
		if isMemoRoute {
			logAttrs = append(logAttrs, slog.String("operation", op))
			if memoID := c.Params("id"); memoID != "" {
				logAttrs = append(logAttrs, slog.String("memo_id", memoID))
			}
			if op == "list" {
				logAttrs = append(logAttrs,
					slog.String("page", c.Query("page", "0")),
					slog.String("size", c.Query("size")),
					slog.String("sort", strings.Join(sortParams(c), ";")),
				)
			}
		}

		level, msg := classify(status, op, isMemoRoute, c.Path())
		if err != nil {
			logAttrs = append(logAttrs, slog.String("error", err.Error()))
		}

		logger.LogAttrs(c.UserContext(), level, msg, logAttrs...)
		return err
	}
}

func classify(status int, op string, isMemoRoute bool, path string) (slog.Level, string) {
	switch {
	case status >= fiber.StatusInternalServerError:
		return slog.LevelError, "server error"
	case isMemoRoute && status == fiber.StatusNotFound:
		return slog.LevelInfo, "memo not found"
	case isMemoRoute && status == fiber.StatusBadRequest:
		return slog.LevelWarn, "memo " + op + " rejected"
	case status >= fiber.StatusBadRequest:
		return slog.LevelWarn, "client error"
	case isMemoRoute:
		return slog.LevelInfo, "memo " + op + " completed"
	case path == "/health" || path == "/metrics":
		return slog.LevelDebug, "probe completed"
	default:
		return slog.LevelInfo, "request completed"
	}
}

func sortParams(c *fiber.Ctx) []string {
	var values []string
	for _, v := range c.Context().QueryArgs().PeekMulti("sort") {
		values = append(values, string(v))
	}
	return values
}
