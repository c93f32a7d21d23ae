package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/events"
	"github.com/stumpworks/stumpcast/pkg/models"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
)

// searchHandler handles GET /api/search.
func (s *Server) searchHandler(c *echo.Context) error {
	filter := models.SearchFilter{
		Keyword:   c.QueryParam("keyword"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		Limit:     defaultSearchLimit,
	}

	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit: must be a positive integer")
		}
		if n > maxSearchLimit {
			n = maxSearchLimit
		}
		filter.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset: must be a non-negative integer")
		}
		filter.Offset = n
	}

	results, total, err := s.store.SearchSpeeches(c.Request().Context(), filter)
	if err != nil {
		return mapServiceError(err)
	}

	s.events.Record(c.Request().Context(), events.TypeSearch, map[string]any{
		"keyword": filter.Keyword,
		"results": len(results),
	}, c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, SearchResponse{
		Results: results,
		Pagination: Pagination{
			Total:   total,
			Limit:   filter.Limit,
			Offset:  filter.Offset,
			HasMore: filter.Offset+len(results) < total,
		},
	})
}

// verifySourcesHandler handles GET /api/verify-sources.
func (s *Server) verifySourcesHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.ingestor.VerifyAll(c.Request().Context()))
}

// refreshArchiveHandler handles POST /api/refresh-archive.
func (s *Server) refreshArchiveHandler(c *echo.Context) error {
	result, err := s.ingestor.PopulateArchive(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, result)
}
