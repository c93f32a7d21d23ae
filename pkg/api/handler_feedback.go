package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/models"
)

// submitFeedbackHandler handles POST /api/feedback.
func (s *Server) submitFeedbackHandler(c *echo.Context) error {
	var req SubmitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	for name, rating := range map[string]int{
		"overallRating": req.OverallRating,
		"scriptRating":  req.ScriptRating,
		"audioRating":   req.AudioRating,
	} {
		if rating < 1 || rating > 5 {
			return echo.NewHTTPError(http.StatusBadRequest, name+" must be between 1 and 5")
		}
	}

	err := s.store.InsertFeedback(c.Request().Context(), models.FeedbackRecord{
		OverallRating: req.OverallRating,
		ScriptRating:  req.ScriptRating,
		AudioRating:   req.AudioRating,
		Comments:      req.Comments,
		Recommend:     req.Recommend,
		SessionID:     req.SessionID,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"recorded": true})
}

// feedbackAnalyticsHandler handles GET /api/feedback/analytics.
func (s *Server) feedbackAnalyticsHandler(c *echo.Context) error {
	summary, err := s.store.GetFeedbackSummary(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}

	counters, since := s.events.Counters()
	return c.JSON(http.StatusOK, map[string]any{
		"feedback": summary,
		"events":   counters,
		"since":    since,
	})
}

// analyticsCleanupHandler handles POST /api/analytics/cleanup.
func (s *Server) analyticsCleanupHandler(c *echo.Context) error {
	deleted, err := s.events.Cleanup(c.Request().Context(), s.cfg.EventRetention)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": deleted})
}

// listVoicesHandler handles GET /api/voices.
func (s *Server) listVoicesHandler(c *echo.Context) error {
	result, err := s.tts.ListVoices(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, result.Raw)
}
