package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stumpworks/stumpcast/pkg/models"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
)

type speechRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Date          sql.NullString `db:"date"`
	Source        string         `db:"source"`
	RallyLocation sql.NullString `db:"rally_location"`
	VideoURL      sql.NullString `db:"video_url"`
	AudioURL      sql.NullString `db:"audio_url"`
	TranscriptURL sql.NullString `db:"transcript_url"`
	Transcript    sql.NullString `db:"transcript"`
	Duration      sql.NullString `db:"duration"`
	ThumbnailURL  sql.NullString `db:"thumbnail_url"`
	Status        string         `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r speechRow) toModel() models.Speech {
	return models.Speech{
		ID:            r.ID,
		Title:         r.Title,
		Date:          r.Date.String,
		Source:        r.Source,
		RallyLocation: r.RallyLocation.String,
		VideoURL:      r.VideoURL.String,
		AudioURL:      r.AudioURL.String,
		TranscriptURL: r.TranscriptURL.String,
		Transcript:    r.Transcript.String,
		Duration:      r.Duration.String,
		ThumbnailURL:  r.ThumbnailURL.String,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// UpsertSpeeches inserts the given records, replacing on id collision, and
// returns the number of rows that did not previously exist.
func (s *Store) UpsertSpeeches(ctx context.Context, records []models.Speech) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, ioErr("upsert_speeches", err)
	}
	defer tx.Rollback()

	inserted := 0
	now := time.Now().UTC()
	for _, rec := range records {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM speeches WHERE id = ?)`, rec.ID); err != nil {
			return 0, ioErr("upsert_speeches", err)
		}

		status := rec.Status
		if status == "" {
			status = models.SpeechStatusActive
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO speeches (id, title, date, source, rally_location, video_url,
				audio_url, transcript_url, transcript, duration, thumbnail_url,
				status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				title = excluded.title,
				date = excluded.date,
				source = excluded.source,
				rally_location = excluded.rally_location,
				video_url = excluded.video_url,
				audio_url = excluded.audio_url,
				transcript_url = excluded.transcript_url,
				transcript = excluded.transcript,
				duration = excluded.duration,
				thumbnail_url = excluded.thumbnail_url,
				updated_at = excluded.updated_at`,
			rec.ID, rec.Title, nullable(rec.Date), rec.Source, nullable(rec.RallyLocation),
			nullable(rec.VideoURL), nullable(rec.AudioURL), nullable(rec.TranscriptURL),
			nullable(rec.Transcript), nullable(rec.Duration), nullable(rec.ThumbnailURL),
			status, now, now)
		if err != nil {
			return 0, ioErr("upsert_speeches", err)
		}
		if !exists {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, ioErr("upsert_speeches", err)
	}
	return inserted, nil
}

// SearchSpeeches returns active speeches matching the filter plus the
// unpaginated total under the same filter. Order is date DESC with unknown
// dates last; ties break by id ASC so pagination is stable.
func (s *Store) SearchSpeeches(ctx context.Context, filter models.SearchFilter) ([]models.Speech, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"status = ?"}
	args := []any{models.SpeechStatusActive}

	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(escapeLike(filter.Keyword)) + "%"
		where = append(where, `(lower(title) LIKE ? ESCAPE '\'
			OR lower(COALESCE(transcript, '')) LIKE ? ESCAPE '\'
			OR lower(COALESCE(rally_location, '')) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if filter.StartDate != "" {
		where = append(where, "date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		where = append(where, "date <= ?")
		args = append(args, filter.EndDate)
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM speeches WHERE "+cond, args...); err != nil {
		return nil, 0, ioErr("search_speeches", err)
	}

	query := fmt.Sprintf(`SELECT * FROM speeches WHERE %s
		ORDER BY (date IS NULL) ASC, date DESC, id ASC
		LIMIT ? OFFSET ?`, cond)
	args = append(args, limit, offset)

	var rows []speechRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, ioErr("search_speeches", err)
	}

	results := make([]models.Speech, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toModel())
	}
	return results, total, nil
}

// GetSpeeches resolves the given ids, preserving the requested order.
// Ids that do not resolve are simply absent from the result.
func (s *Store) GetSpeeches(ctx context.Context, ids []string) ([]models.Speech, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT * FROM speeches WHERE id IN (?)", ids)
	if err != nil {
		return nil, ioErr("get_speeches", err)
	}

	var rows []speechRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, ioErr("get_speeches", err)
	}

	byID := make(map[string]models.Speech, len(rows))
	for _, r := range rows {
		byID[r.ID] = r.toModel()
	}

	out := make([]models.Speech, 0, len(ids))
	for _, id := range ids {
		if sp, ok := byID[id]; ok {
			out = append(out, sp)
		}
	}
	return out, nil
}

// CountSpeeches returns the total number of stored speeches.
func (s *Store) CountSpeeches(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM speeches"); err != nil {
		return 0, ioErr("count_speeches", err)
	}
	return n, nil
}

// escapeLike escapes LIKE metacharacters so keyword search is a literal
// substring match.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
