package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/version"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"
)

// healthHandler handles GET /health. Minimal and unauthenticated: only the
// server's own store is checked, never external providers.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:        healthStatusHealthy,
		Database:      "connected",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Version:       version.Full(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	resp.MemoryAllocMB = mem.Alloc / (1 << 20)

	if err := s.store.Health(reqCtx); err != nil {
		resp.Status = healthStatusUnhealthy
		resp.Database = err.Error()
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	if count, err := s.store.CountSpeeches(reqCtx); err == nil {
		resp.SpeechCount = count
	}

	return c.JSON(http.StatusOK, resp)
}

// statusHandler handles GET /api/status.
func (s *Server) statusHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	verified := s.ingestor.VerifyAll(ctx)
	availability := make(map[string]bool, len(verified))
	for name, res := range verified {
		availability[name] = res.Available
	}

	count, err := s.store.CountSpeeches(ctx)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, StatusResponse{
		Sources:      availability,
		SpeechCount:  count,
		AIConfigured: s.cfg.OpenRouterAPIKey != "",
	})
}
