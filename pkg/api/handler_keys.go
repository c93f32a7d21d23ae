package api

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/llm"
	"github.com/stumpworks/stumpcast/pkg/orchestrator"
)

// maxBulkKeys caps POST /api/validate-keys input.
const maxBulkKeys = 10

// clientKey extracts a caller-supplied provider key from the X-API-Key
// header or an Authorization bearer token. Empty when neither is present.
func clientKey(c *echo.Context) string {
	if key := c.Request().Header.Get("X-API-Key"); key != "" {
		return key
	}
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// validateKeyHandler handles POST /api/validate-openrouter-key. The key may
// arrive in the body or in a header. The verdict maps onto status codes:
// invalid 401, rate limited 429, network failure 503.
func (s *Server) validateKeyHandler(c *echo.Context) error {
	var req ValidateKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	key := req.APIKey
	if key == "" {
		key = clientKey(c)
	}
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "apiKey is required")
	}

	verdict, err := s.validator.Validate(c.Request().Context(), key)
	if err != nil {
		return mapServiceError(err)
	}

	status := http.StatusOK
	if !verdict.Valid {
		switch verdict.ErrorCode {
		case llm.CodeRateLimited:
			status = http.StatusTooManyRequests
		case llm.CodeNetworkError:
			status = http.StatusServiceUnavailable
		case llm.CodeInsufficientPermissions:
			status = http.StatusForbidden
		default:
			status = http.StatusUnauthorized
		}
	}
	return c.JSON(status, verdict)
}

// validateKeysHandler handles POST /api/validate-keys. Valid keys join the
// pool with a priority derived from how many models they can see.
func (s *Server) validateKeysHandler(c *echo.Context) error {
	var req ValidateKeysRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.APIKeys) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "apiKeys is required")
	}
	if len(req.APIKeys) > maxBulkKeys {
		return echo.NewHTTPError(http.StatusBadRequest, "at most 10 keys per request")
	}

	results := make([]KeyVerdictResponse, 0, len(req.APIKeys))
	for _, key := range req.APIKeys {
		verdict, err := s.validator.Validate(c.Request().Context(), key)
		if err != nil {
			return mapServiceError(err)
		}

		entry := KeyVerdictResponse{Prefix: keyPrefix(key), Verdict: verdict}
		if verdict.Valid {
			s.pool.Add(key, verdict.ModelCount/10)
			entry.Pooled = true
		}
		results = append(results, entry)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"results":   results,
		"poolStats": s.pool.Stats(),
	})
}

// keyPoolStatusHandler handles GET /api/key-pool-status.
func (s *Server) keyPoolStatusHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.pool.Stats())
}

// openRouterProxyHandler handles POST /api/openrouter: a direct completion
// call using the standard key precedence (client header, pool, environment).
func (s *Server) openRouterProxyHandler(c *echo.Context) error {
	var req ProxyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Model == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "model is required")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "messages is required")
	}

	messages := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := s.orch.Complete(c.Request().Context(), llm.ChatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, keyOptions(c, req.UsePool))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, ProxyResponse{
		Content:   resp.Content,
		Model:     resp.Model,
		ElapsedMS: resp.Elapsed.Milliseconds(),
	})
}

// keyOptions assembles the key precedence input for one request.
func keyOptions(c *echo.Context, usePool bool) orchestrator.KeyOptions {
	return orchestrator.KeyOptions{ClientKey: clientKey(c), UsePool: usePool}
}

func keyPrefix(key string) string {
	if len(key) <= 12 {
		return key
	}
	return key[:12] + "..."
}
