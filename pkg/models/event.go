package models

import "time"

// Event is an append-only analytics/error/performance record.
type Event struct {
	ID        int64          `json:"id"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// FeedbackRecord is an append-only user rating of a produced episode.
type FeedbackRecord struct {
	ID            int64     `json:"id"`
	OverallRating int       `json:"overall_rating"` // 1-5
	ScriptRating  int       `json:"script_rating"`  // 1-5
	AudioRating   int       `json:"audio_rating"`   // 1-5
	Comments      string    `json:"comments,omitempty"`
	Recommend     bool      `json:"recommend"`
	SessionID     string    `json:"session_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
