package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/events"
	"github.com/stumpworks/stumpcast/pkg/orchestrator"
	"github.com/stumpworks/stumpcast/pkg/workflow"
)

// createWorkflowHandler handles POST /api/workflow.
func (s *Server) createWorkflowHandler(c *echo.Context) error {
	var req CreateWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	wf, err := s.engine.Create(c.Request().Context(), req.Name, req.SpeechIDs)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, CreateWorkflowResponse{
		WorkflowID: wf.ID,
		Status:     wf.Status,
		Name:       wf.Name,
		Speeches:   len(wf.SpeechIDs),
	})
}

// getWorkflowHandler handles GET /api/workflow/:id.
func (s *Server) getWorkflowHandler(c *echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workflow id is required")
	}

	wf, speeches, err := s.engine.Get(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, WorkflowResponse{Workflow: wf, Speeches: speeches})
}

// uploadScriptHandler handles POST /api/upload-script.
func (s *Server) uploadScriptHandler(c *echo.Context) error {
	var req UploadScriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.WorkflowID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workflowId is required")
	}

	wf, err := s.engine.UploadScript(c.Request().Context(), req.WorkflowID, req.Script)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, WorkflowResponse{Workflow: wf})
}

// generateScriptHandler handles POST /api/generate-script.
func (s *Server) generateScriptHandler(c *echo.Context) error {
	var req GenerateScriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.WorkflowID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workflowId is required")
	}
	if req.Model == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "model is required")
	}

	wf, result, err := s.engine.GenerateScript(c.Request().Context(), req.WorkflowID, workflow.GenerateScriptInput{
		Model:           req.Model,
		Style:           req.Style,
		DurationMinutes: req.Duration,
		BatchSize:       req.BatchSize,
		UseSwarm:        req.UseSwarm,
		Keys: orchestrator.KeyOptions{
			ClientKey: clientKey(c),
			UsePool:   req.UsePool,
		},
	})
	if err != nil {
		return mapServiceError(err)
	}

	s.events.Record(c.Request().Context(), events.TypeScriptGenerated, map[string]any{
		"workflow_id": wf.ID,
		"strategy":    result.Strategy,
	}, c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, GenerateScriptResponse{
		Script:         result.Script,
		Strategy:       result.Strategy,
		BatchProcessed: result.BatchProcessed,
		Status:         wf.Status,
	})
}

// generateAudioHandler handles POST /api/generate-audio.
func (s *Server) generateAudioHandler(c *echo.Context) error {
	var req GenerateAudioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.WorkflowID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workflowId is required")
	}

	wf, outcome, err := s.engine.GenerateAudio(c.Request().Context(), req.WorkflowID, workflow.AudioInput{
		Voice:           req.Voice,
		Preset:          req.Preset,
		CustomVoicePath: req.CustomVoicePath,
	})
	if err != nil {
		return mapServiceError(err)
	}

	s.events.Record(c.Request().Context(), events.TypeAudioGenerated, map[string]any{
		"workflow_id": wf.ID,
		"fallback":    outcome.Fallback,
	}, c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, GenerateAudioResponse{
		AudioURL:  outcome.AudioURL,
		Fallback:  outcome.Fallback,
		TTSResult: outcome.Result,
		Status:    wf.Status,
	})
}

// finalizeHandler handles POST /api/finalize.
func (s *Server) finalizeHandler(c *echo.Context) error {
	var req FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.WorkflowID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workflowId is required")
	}

	localBundle := true
	if req.LocalBundle != nil {
		localBundle = *req.LocalBundle
	}

	wf, result, err := s.engine.Finalize(c.Request().Context(), req.WorkflowID, workflow.FinalizeInput{
		Title:       req.Title,
		Description: req.Description,
		LocalBundle: localBundle,
	})
	if err != nil {
		return mapServiceError(err)
	}

	s.events.Record(c.Request().Context(), events.TypeFinalized, map[string]any{
		"workflow_id":  wf.ID,
		"local_bundle": localBundle,
	}, c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, FinalizeResponse{
		RSSURL:     result.RSSPath,
		BundlePath: result.BundlePath,
		Status:     wf.Status,
	})
}
