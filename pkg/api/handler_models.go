package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/models"
)

// modelCategories is the presentation order for GET /api/models.
var modelCategories = []string{
	models.CategoryTopOverall,
	models.CategoryTopFree,
	models.CategoryDiscovered,
	models.CategoryFallback,
}

// listModelsHandler handles GET /api/models. Returns the curated catalog; a
// validation verdict for the effective key is attached when one is
// available.
func (s *Server) listModelsHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	var all []models.CuratedModel
	for _, category := range modelCategories {
		entries, err := s.store.CuratedModelsByCategory(ctx, category)
		if err != nil {
			return mapServiceError(err)
		}
		all = append(all, entries...)
	}

	resp := ModelsResponse{Models: all}

	key := clientKey(c)
	if key == "" {
		key = s.cfg.OpenRouterAPIKey
	}
	if key != "" {
		if verdict, err := s.validator.Validate(ctx, key); err == nil {
			resp.Validation = &verdict
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// refreshModelsHandler handles POST /api/refresh-models.
func (s *Server) refreshModelsHandler(c *echo.Context) error {
	var req struct {
		UsePool bool `json:"usePool,omitempty"`
	}
	if err := c.Bind(&req); err != nil && c.Request().ContentLength > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	count, err := s.orch.RefreshModels(c.Request().Context(), keyOptions(c, req.UsePool))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"refreshed": count})
}
