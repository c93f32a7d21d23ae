package api

import (
	"github.com/stumpworks/stumpcast/pkg/llm"
	"github.com/stumpworks/stumpcast/pkg/models"
	"github.com/stumpworks/stumpcast/pkg/tts"
)

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	SpeechCount   int    `json:"speech_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	Version       string `json:"version"`
}

// StatusResponse is the body for GET /api/status.
type StatusResponse struct {
	Sources      map[string]bool `json:"sources"`
	SpeechCount  int             `json:"speechCount"`
	AIConfigured bool            `json:"aiConfigured"`
}

// Pagination describes a search result window.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// SearchResponse is the body for GET /api/search.
type SearchResponse struct {
	Results    []models.Speech `json:"results"`
	Pagination Pagination      `json:"pagination"`
}

// WorkflowResponse is a workflow plus its resolved speeches.
type WorkflowResponse struct {
	models.Workflow
	Speeches []models.Speech `json:"speeches,omitempty"`
}

// CreateWorkflowResponse is the body for POST /api/workflow.
type CreateWorkflowResponse struct {
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
	Name       string `json:"name"`
	Speeches   int    `json:"speeches"`
}

// GenerateScriptResponse is the body for POST /api/generate-script.
type GenerateScriptResponse struct {
	Script         string `json:"script"`
	Strategy       string `json:"strategy"`
	BatchProcessed bool   `json:"batchProcessed"`
	Status         string `json:"status"`
}

// GenerateAudioResponse is the body for POST /api/generate-audio.
type GenerateAudioResponse struct {
	AudioURL  string      `json:"audioUrl"`
	Fallback  bool        `json:"fallback"`
	TTSResult *tts.Result `json:"ttsResult,omitempty"`
	Status    string      `json:"status"`
}

// FinalizeResponse is the body for POST /api/finalize.
type FinalizeResponse struct {
	RSSURL     string `json:"rssUrl"`
	BundlePath string `json:"bundlePath,omitempty"`
	Status     string `json:"status"`
}

// ModelsResponse is the body for GET /api/models.
type ModelsResponse struct {
	Models     []models.CuratedModel `json:"models"`
	Validation *llm.Verdict          `json:"validation,omitempty"`
}

// KeyVerdictResponse is one entry in the bulk validation response.
type KeyVerdictResponse struct {
	Prefix  string      `json:"prefix"`
	Verdict llm.Verdict `json:"verdict"`
	Pooled  bool        `json:"pooled"`
}

// ProxyResponse is the body for POST /api/openrouter.
type ProxyResponse struct {
	Content   string `json:"content"`
	Model     string `json:"model"`
	ElapsedMS int64  `json:"elapsed_ms"`
}
