package models

import "time"

// Speech statuses.
const (
	SpeechStatusActive = "active"
	SpeechStatusHidden = "hidden"
)

// Speech is a single archived address. Immutable once ingested except for
// Status. The ID is source-prefixed (e.g. "archive_<identifier>") so that
// re-ingesting the same external item upserts instead of duplicating.
type Speech struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          string    `json:"date,omitempty"` // ISO YYYY-MM-DD, empty when unknown
	Source        string    `json:"source"`
	RallyLocation string    `json:"rally_location,omitempty"`
	VideoURL      string    `json:"video_url,omitempty"`
	AudioURL      string    `json:"audio_url,omitempty"`
	TranscriptURL string    `json:"transcript_url,omitempty"`
	Transcript    string    `json:"transcript,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SearchFilter narrows SearchSpeeches results. Keyword is a case-insensitive
// substring match against title, transcript and rally_location. Date bounds
// are inclusive ISO dates.
type SearchFilter struct {
	Keyword   string
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}
