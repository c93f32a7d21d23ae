package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/llm"
	"github.com/stumpworks/stumpcast/pkg/orchestrator"
	"github.com/stumpworks/stumpcast/pkg/store"
	"github.com/stumpworks/stumpcast/pkg/tts"
	"github.com/stumpworks/stumpcast/pkg/workflow"
)

// errorEnvelope is the uniform error body: a stable code plus an optional
// human message.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// mapServiceError maps component errors to HTTP error responses.
func mapServiceError(err error) *echo.HTTPError {
	var validErr *workflow.ValidationError
	if errors.As(err, &validErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validErr.Error())
	}
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if errors.Is(err, workflow.ErrNotReady) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, orchestrator.ErrNoAvailableKey) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no available API key")
	}
	if errors.Is(err, tts.ErrTimeout) {
		return echo.NewHTTPError(http.StatusInternalServerError, "timeout: "+err.Error())
	}

	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case llm.CodeRateLimited:
			return echo.NewHTTPError(http.StatusTooManyRequests, "provider rate limited")
		case llm.CodeInvalidKey:
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid API key")
		case llm.CodeInsufficientPermissions:
			return echo.NewHTTPError(http.StatusForbidden, "key lacks required permissions")
		case llm.CodeNetworkError:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "provider unreachable")
		default:
			return echo.NewHTTPError(http.StatusBadGateway, "provider request failed")
		}
	}

	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		slog.Error("Store error", "op", storeErr.Op, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	}

	slog.Error("Unexpected service error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// errorHandler renders every error as the uniform envelope. Detailed
// messages are suppressed for 5xx responses in production.
func (s *Server) errorHandler(c *echo.Context, err error) {
	if resp, respErr := echo.UnwrapResponse(c.Response()); respErr == nil && resp.Committed {
		return
	}

	he, ok := err.(*echo.HTTPError)
	if !ok {
		he = mapServiceError(err)
	}

	env := errorEnvelope{Error: codeForStatus(he.Code)}
	env.Message = he.Message
	if s.cfg.IsProduction() && he.Code >= http.StatusInternalServerError {
		env.Message = ""
	}

	if jsonErr := c.JSON(he.Code, env); jsonErr != nil {
		slog.Error("Failed to write error response", "error", jsonErr)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusBadGateway:
		return "upstream_failure"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}
