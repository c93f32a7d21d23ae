package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/stumpworks/stumpcast/pkg/models"
)

// defaultCuratedModels is the built-in seed set, used until the live
// catalog has been refreshed at least once.
func defaultCuratedModels() []models.CuratedModel {
	return []models.CuratedModel{
		{ID: "anthropic/claude-sonnet-4", Name: "Claude Sonnet 4", Provider: "anthropic",
			Category: models.CategoryTopOverall, PerformanceScore: 9.2,
			Description: "Strong long-form writing, best default for scripts"},
		{ID: "openai/gpt-4o", Name: "GPT-4o", Provider: "openai",
			Category: models.CategoryTopOverall, PerformanceScore: 8.9,
			Description: "Fast, reliable general model"},
		{ID: "google/gemini-2.0-flash-001", Name: "Gemini 2.0 Flash", Provider: "google",
			Category: models.CategoryTopOverall, PerformanceScore: 8.4,
			Description: "Large context, quick summaries"},
		{ID: "meta-llama/llama-3.3-70b-instruct:free", Name: "Llama 3.3 70B (free)", Provider: "meta-llama",
			Category: models.CategoryTopFree, PerformanceScore: 7.5,
			Description: "Best free tier writing quality"},
		{ID: "mistralai/mistral-small-3.1:free", Name: "Mistral Small 3.1 (free)", Provider: "mistralai",
			Category: models.CategoryTopFree, PerformanceScore: 6.8,
			Description: "Free fallback for batch summaries"},
		{ID: "openai/gpt-4o-mini", Name: "GPT-4o mini", Provider: "openai",
			Category: models.CategoryFallback, PerformanceScore: 7.0,
			Description: "Cheap fallback when top models are rate limited"},
	}
}

// SeedModels installs the built-in curated set. Idempotent; existing usage
// counters survive.
func (o *Orchestrator) SeedModels(ctx context.Context) error {
	if o.recorder == nil {
		return nil
	}
	return o.recorder.UpsertCuratedModels(ctx, defaultCuratedModels())
}

// RefreshModels pulls the live provider catalog and records every model id
// in the discovered category. Requires a usable key (same precedence as
// calls).
func (o *Orchestrator) RefreshModels(ctx context.Context, keys KeyOptions) (int, error) {
	if o.recorder == nil {
		return 0, nil
	}
	key, _, err := o.selectKey(keys)
	if err != nil {
		return 0, err
	}

	ids, err := o.chatter.ListModels(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("refresh models: %w", err)
	}

	entries := make([]models.CuratedModel, 0, len(ids))
	for _, id := range ids {
		provider := id
		if i := strings.Index(id, "/"); i >= 0 {
			provider = id[:i]
		}
		category := models.CategoryDiscovered
		if strings.HasSuffix(id, ":free") {
			category = models.CategoryTopFree
		}
		entries = append(entries, models.CuratedModel{
			ID:       id,
			Name:     id,
			Provider: provider,
			Category: category,
		})
	}

	if err := o.recorder.UpsertCuratedModels(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
