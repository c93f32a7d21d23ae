package api

import (
	"log/slog"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/events"
)

// maxBodyBytes caps JSON request bodies at 10 MB.
const maxBodyBytes = 10 << 20

// cors returns middleware that allows cross-origin browser access. The API
// serves a static front-end from a separate origin in development.
func cors() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}

// bodyLimit returns middleware that rejects request bodies larger than n
// bytes.
func bodyLimit(n int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			req := c.Request()
			if req.ContentLength > n {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
			}
			req.Body = http.MaxBytesReader(c.Response(), req.Body, n)
			return next(c)
		}
	}
}

// requestLog returns middleware that emits one log line per request and
// appends a request event to the analytics log.
func (s *Server) requestLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			elapsed := time.Since(start)

			req := c.Request()
			status := 0
			if resp, respErr := echo.UnwrapResponse(c.Response()); respErr == nil {
				status = resp.Status
			}
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			slog.Info("Request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration", elapsed)

			if s.events != nil {
				s.events.Record(c.Request().Context(), events.TypeRequest, map[string]any{
					"method":      req.Method,
					"path":        req.URL.Path,
					"status":      status,
					"duration_ms": elapsed.Milliseconds(),
				}, c.RealIP(), req.UserAgent())
			}
			return err
		}
	}
}
