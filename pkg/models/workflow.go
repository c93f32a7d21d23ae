package models

import "time"

// Workflow statuses. Transitions are monotonic except that
// StatusScriptGenerated and StatusScriptUploaded are equivalent entry points
// into the audio stage.
const (
	StatusDraft           = "draft"
	StatusScriptGenerated = "script_generated"
	StatusScriptUploaded  = "script_uploaded"
	StatusAudioGenerated  = "audio_generated"
	StatusFinalized       = "finalized"
)

// Workflow is the central state carrier for a podcast job.
type Workflow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SpeechIDs []string  `json:"speech_ids"`
	Script    string    `json:"script,omitempty"`
	AudioURL  string    `json:"audio_url,omitempty"`
	RSSURL    string    `json:"rss_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasScript reports whether a script has been generated or uploaded.
func (w *Workflow) HasScript() bool {
	return w.Script != ""
}

// WorkflowUpdate is a partial update of the mutable Workflow fields.
// Nil pointers leave the stored value untouched.
type WorkflowUpdate struct {
	Script   *string
	AudioURL *string
	RSSURL   *string
	Status   *string
}
