package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/stumpworks/stumpcast/pkg/models"
)

type curatedModelRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Provider         string         `db:"provider"`
	Description      sql.NullString `db:"description"`
	Category         string         `db:"category"`
	PerformanceScore float64        `db:"performance_score"`
	UsageCount       int            `db:"usage_count"`
	AvgResponseTime  float64        `db:"avg_response_time"`
	SuccessRate      float64        `db:"success_rate"`
	LastUsed         sql.NullTime   `db:"last_used"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r curatedModelRow) toModel() models.CuratedModel {
	return models.CuratedModel{
		ID:               r.ID,
		Name:             r.Name,
		Provider:         r.Provider,
		Description:      r.Description.String,
		Category:         r.Category,
		PerformanceScore: r.PerformanceScore,
		UsageCount:       r.UsageCount,
		AvgResponseTime:  r.AvgResponseTime,
		SuccessRate:      r.SuccessRate,
		LastUsed:         r.LastUsed.Time,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// UpsertCuratedModels replaces curated model entries, preserving usage
// counters on collision.
func (s *Store) UpsertCuratedModels(ctx context.Context, entries []models.CuratedModel) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ioErr("upsert_curated_models", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, m := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO curated_models (id, name, provider, description, category,
				performance_score, usage_count, avg_response_time, success_rate,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				provider = excluded.provider,
				description = excluded.description,
				category = excluded.category,
				performance_score = excluded.performance_score,
				updated_at = excluded.updated_at`,
			m.ID, m.Name, m.Provider, nullable(m.Description), m.Category,
			m.PerformanceScore, m.UsageCount, m.AvgResponseTime, m.SuccessRate,
			now, now)
		if err != nil {
			return ioErr("upsert_curated_models", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return ioErr("upsert_curated_models", err)
	}
	return nil
}

// CuratedModelsByCategory lists entries for a category ordered by
// performance score then usage.
func (s *Store) CuratedModelsByCategory(ctx context.Context, category string) ([]models.CuratedModel, error) {
	var rows []curatedModelRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM curated_models WHERE category = ?
		ORDER BY performance_score DESC, usage_count DESC`, category)
	if err != nil {
		return nil, ioErr("curated_models_by_category", err)
	}

	out := make([]models.CuratedModel, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// RecordModelUse bumps usage_count and last_used after a successful LLM call.
// Unknown models are recorded in the discovered category.
func (s *Store) RecordModelUse(ctx context.Context, modelID string, responseTime float64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE curated_models SET
			usage_count = usage_count + 1,
			avg_response_time = (avg_response_time * usage_count + ?) / (usage_count + 1),
			last_used = ?,
			updated_at = ?
		WHERE id = ?`,
		responseTime, now, now, modelID)
	if err != nil {
		return ioErr("record_model_use", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ioErr("record_model_use", err)
	}
	if n == 0 {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO curated_models (id, name, provider, category,
				performance_score, usage_count, avg_response_time, success_rate,
				last_used, created_at, updated_at)
			VALUES (?, ?, ?, ?, 0, 1, ?, 1.0, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`,
			modelID, modelID, providerOf(modelID), models.CategoryDiscovered,
			responseTime, now, now, now)
		if err != nil {
			return ioErr("record_model_use", err)
		}
	}
	return nil
}

// providerOf extracts the provider part of a provider/model id.
func providerOf(modelID string) string {
	for i := 0; i < len(modelID); i++ {
		if modelID[i] == '/' {
			return modelID[:i]
		}
	}
	return modelID
}
