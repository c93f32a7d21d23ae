package api

// CreateWorkflowRequest is the body for POST /api/workflow.
type CreateWorkflowRequest struct {
	Name      string   `json:"name"`
	SpeechIDs []string `json:"speechIds"`
}

// UploadScriptRequest is the body for POST /api/upload-script.
type UploadScriptRequest struct {
	WorkflowID string `json:"workflowId"`
	Script     string `json:"script"`
}

// GenerateScriptRequest is the body for POST /api/generate-script.
type GenerateScriptRequest struct {
	WorkflowID string `json:"workflowId"`
	Model      string `json:"model"`
	Style      string `json:"style,omitempty"`
	Duration   int    `json:"duration,omitempty"`
	BatchSize  int    `json:"batchSize,omitempty"`
	UseSwarm   bool   `json:"useSwarm,omitempty"`
	UsePool    bool   `json:"usePool,omitempty"`
}

// GenerateAudioRequest is the body for POST /api/generate-audio. Synthesis
// always runs through the local worker; a legacy useLocal flag in the body
// is tolerated and ignored.
type GenerateAudioRequest struct {
	WorkflowID      string `json:"workflowId"`
	Voice           string `json:"voice,omitempty"`
	Preset          string `json:"preset,omitempty"`
	CustomVoicePath string `json:"customVoicePath,omitempty"`
}

// FinalizeRequest is the body for POST /api/finalize.
type FinalizeRequest struct {
	WorkflowID  string `json:"workflowId"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	LocalBundle *bool  `json:"localBundle,omitempty"`
}

// ValidateKeyRequest is the body for POST /api/validate-openrouter-key.
type ValidateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// ValidateKeysRequest is the body for POST /api/validate-keys.
type ValidateKeysRequest struct {
	APIKeys []string `json:"apiKeys"`
}

// ProxyRequest is the body for POST /api/openrouter.
type ProxyRequest struct {
	Model       string         `json:"model"`
	Messages    []ProxyMessage `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	UsePool     bool           `json:"usePool,omitempty"`
}

// ProxyMessage is one chat message in a proxy call.
type ProxyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SubmitFeedbackRequest is the body for POST /api/feedback.
type SubmitFeedbackRequest struct {
	OverallRating int    `json:"overallRating"`
	ScriptRating  int    `json:"scriptRating"`
	AudioRating   int    `json:"audioRating"`
	Comments      string `json:"comments,omitempty"`
	Recommend     bool   `json:"recommend,omitempty"`
	SessionID     string `json:"sessionId,omitempty"`
}
