package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/stumpworks/stumpcast/pkg/models"
)

// InsertEvent appends one record to the event log.
func (s *Store) InsertEvent(ctx context.Context, ev models.Event) error {
	var data any
	if len(ev.Data) > 0 {
		b, err := json.Marshal(ev.Data)
		if err != nil {
			return ioErr("insert_event", err)
		}
		data = string(b)
	}

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (event_type, data, ip, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		ev.EventType, data, nullable(ev.IP), nullable(ev.UserAgent), createdAt)
	if err != nil {
		return ioErr("insert_event", err)
	}
	return nil
}

// EventCounts returns per-type totals since the given time.
func (s *Store) EventCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT event_type, COUNT(*) FROM events
		WHERE created_at >= ?
		GROUP BY event_type`, since)
	if err != nil {
		return nil, ioErr("event_counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, ioErr("event_counts", err)
		}
		counts[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("event_counts", err)
	}
	return counts, nil
}

// DeleteEventsBefore removes event rows older than cutoff and returns the
// number deleted. Used by the retention cleanup loop.
func (s *Store) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, ioErr("delete_events", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ioErr("delete_events", err)
	}
	return n, nil
}

// InsertFeedback appends one feedback record.
func (s *Store) InsertFeedback(ctx context.Context, fb models.FeedbackRecord) error {
	createdAt := fb.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (overall_rating, script_rating, audio_rating, comments, recommend, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fb.OverallRating, fb.ScriptRating, fb.AudioRating,
		nullable(fb.Comments), fb.Recommend, nullable(fb.SessionID), createdAt)
	if err != nil {
		return ioErr("insert_feedback", err)
	}
	return nil
}

// FeedbackSummary aggregates stored feedback for the analytics endpoint.
type FeedbackSummary struct {
	Count         int     `json:"count"`
	AvgOverall    float64 `json:"avg_overall"`
	AvgScript     float64 `json:"avg_script"`
	AvgAudio      float64 `json:"avg_audio"`
	RecommendRate float64 `json:"recommend_rate"`
}

// GetFeedbackSummary computes averages over all feedback rows.
func (s *Store) GetFeedbackSummary(ctx context.Context) (FeedbackSummary, error) {
	var row struct {
		Count         int             `db:"count"`
		AvgOverall    sql.NullFloat64 `db:"avg_overall"`
		AvgScript     sql.NullFloat64 `db:"avg_script"`
		AvgAudio      sql.NullFloat64 `db:"avg_audio"`
		RecommendRate sql.NullFloat64 `db:"recommend_rate"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS count,
			AVG(overall_rating) AS avg_overall,
			AVG(script_rating) AS avg_script,
			AVG(audio_rating) AS avg_audio,
			AVG(CASE WHEN recommend THEN 1.0 ELSE 0.0 END) AS recommend_rate
		FROM feedback`)
	if err != nil {
		return FeedbackSummary{}, ioErr("feedback_summary", err)
	}
	return FeedbackSummary{
		Count:         row.Count,
		AvgOverall:    row.AvgOverall.Float64,
		AvgScript:     row.AvgScript.Float64,
		AvgAudio:      row.AvgAudio.Float64,
		RecommendRate: row.RecommendRate.Float64,
	}, nil
}
