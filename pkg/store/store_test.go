package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stumpworks/stumpcast/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func speech(id, title, date string) models.Speech {
	return models.Speech{
		ID:     id,
		Title:  title,
		Date:   date,
		Source: "archive",
	}
}

func TestUpsertSpeechesIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	records := []models.Speech{
		speech("archive_a", "Rally in Tampa", "2024-01-10"),
		speech("archive_b", "Town Hall", "2024-02-01"),
	}

	inserted, err := st.UpsertSpeeches(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Re-ingesting the same set inserts nothing new.
	inserted, err = st.UpsertSpeeches(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	count, err := st.CountSpeeches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpsertReplacesFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertSpeeches(ctx, []models.Speech{speech("archive_a", "Old Title", "2024-01-10")})
	require.NoError(t, err)

	updated := speech("archive_a", "New Title", "2024-01-10")
	updated.Transcript = "full text"
	_, err = st.UpsertSpeeches(ctx, []models.Speech{updated})
	require.NoError(t, err)

	got, err := st.GetSpeeches(ctx, []string{"archive_a"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New Title", got[0].Title)
	assert.Equal(t, "full text", got[0].Transcript)
}

func TestSearchKeywordMatchesTitleTranscriptAndLocation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	byTitle := speech("archive_a", "Economy Speech", "2024-01-01")
	byTranscript := speech("archive_b", "Remarks", "2024-01-02")
	byTranscript.Transcript = "we will fix the ECONOMY tomorrow"
	byLocation := speech("archive_c", "Rally", "2024-01-03")
	byLocation.RallyLocation = "Economy, PA"
	miss := speech("archive_d", "Unrelated", "2024-01-04")

	_, err := st.UpsertSpeeches(ctx, []models.Speech{byTitle, byTranscript, byLocation, miss})
	require.NoError(t, err)

	results, total, err := st.SearchSpeeches(ctx, models.SearchFilter{Keyword: "economy"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NotEqual(t, "archive_d", r.ID)
	}
}

func TestSearchDateBoundsInclusive(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertSpeeches(ctx, []models.Speech{
		speech("archive_a", "One", "2024-01-01"),
		speech("archive_b", "Two", "2024-02-01"),
		speech("archive_c", "Three", "2024-03-01"),
	})
	require.NoError(t, err)

	results, total, err := st.SearchSpeeches(ctx, models.SearchFilter{
		StartDate: "2024-02-01",
		EndDate:   "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, results, 2)
	assert.Equal(t, "archive_c", results[0].ID) // newest first
	assert.Equal(t, "archive_b", results[1].ID)
}

func TestSearchOrdersUnknownDatesLast(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertSpeeches(ctx, []models.Speech{
		speech("archive_nodate", "Undated", ""),
		speech("archive_new", "Newest", "2024-06-01"),
		speech("archive_old", "Oldest", "2023-01-01"),
	})
	require.NoError(t, err)

	results, _, err := st.SearchSpeeches(ctx, models.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "archive_new", results[0].ID)
	assert.Equal(t, "archive_old", results[1].ID)
	assert.Equal(t, "archive_nodate", results[2].ID)
}

func TestSearchPaginationStable(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Same date throughout: ordering falls back to id ASC, so pages must not
	// overlap or skip.
	var records []models.Speech
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		records = append(records, speech("archive_"+id, "Speech "+id, "2024-01-01"))
	}
	_, err := st.UpsertSpeeches(ctx, records)
	require.NoError(t, err)

	var seen []string
	for offset := 0; offset < 5; offset += 2 {
		page, total, err := st.SearchSpeeches(ctx, models.SearchFilter{Limit: 2, Offset: offset})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		for _, r := range page {
			seen = append(seen, r.ID)
		}
	}
	assert.Equal(t, []string{"archive_a", "archive_b", "archive_c", "archive_d", "archive_e"}, seen)
}

func TestSearchExcludesHiddenSpeeches(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	hidden := speech("archive_hidden", "Hidden", "2024-01-01")
	hidden.Status = models.SpeechStatusHidden
	_, err := st.UpsertSpeeches(ctx, []models.Speech{
		hidden,
		speech("archive_active", "Visible", "2024-01-02"),
	})
	require.NoError(t, err)

	results, total, err := st.SearchSpeeches(ctx, models.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "archive_active", results[0].ID)
}

func TestSearchEscapesLikeMetacharacters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertSpeeches(ctx, []models.Speech{
		speech("archive_a", "100% Committed", "2024-01-01"),
		speech("archive_b", "Fully Committed", "2024-01-02"),
	})
	require.NoError(t, err)

	_, total, err := st.SearchSpeeches(ctx, models.SearchFilter{Keyword: "100%"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestGetSpeechesPreservesRequestOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertSpeeches(ctx, []models.Speech{
		speech("archive_a", "One", "2024-01-01"),
		speech("archive_b", "Two", "2024-01-02"),
		speech("archive_c", "Three", "2024-01-03"),
	})
	require.NoError(t, err)

	got, err := st.GetSpeeches(ctx, []string{"archive_c", "archive_a", "archive_missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "archive_c", got[0].ID)
	assert.Equal(t, "archive_a", got[1].ID)
}

func TestWorkflowLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertSpeeches(ctx, []models.Speech{speech("archive_a", "One", "2024-01-01")})
	require.NoError(t, err)

	wf, err := st.CreateWorkflow(ctx, "Episode 1", []string{"archive_a"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, wf.Status)
	assert.NotEmpty(t, wf.ID)

	got, err := st.GetWorkflow(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive_a"}, got.SpeechIDs)

	script := "HOST: welcome"
	status := models.StatusScriptGenerated
	updated, err := st.UpdateWorkflow(ctx, wf.ID, models.WorkflowUpdate{
		Script: &script,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, script, updated.Script)
	assert.Equal(t, models.StatusScriptGenerated, updated.Status)
	// Untouched fields survive partial updates.
	assert.Equal(t, "Episode 1", updated.Name)
}

func TestGetWorkflowNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetWorkflow(context.Background(), "nope")
	assert.True(t, IsNotFound(err))

	status := models.StatusFinalized
	_, err = st.UpdateWorkflow(context.Background(), "nope", models.WorkflowUpdate{Status: &status})
	assert.True(t, IsNotFound(err))
}

func TestKeyValidationCacheRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	record := models.KeyValidation{
		KeyHash:     "abc123",
		IsValid:     true,
		ModelCount:  42,
		ValidatedAt: now,
		ExpiresAt:   now.Add(time.Hour),
	}
	require.NoError(t, st.CacheKeyValidation(ctx, record))

	got, hit, err := st.LookupKeyValidation(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, hit)
	assert.True(t, got.IsValid)
	assert.Equal(t, 42, got.ModelCount)
}

func TestKeyValidationCacheExpires(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, st.CacheKeyValidation(ctx, models.KeyValidation{
		KeyHash:     "expired",
		IsValid:     true,
		ValidatedAt: now.Add(-2 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	}))

	_, hit, err := st.LookupKeyValidation(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestEventLogAndRetention(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	old := models.Event{EventType: "search", CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	recent := models.Event{EventType: "search", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.InsertEvent(ctx, old))
	require.NoError(t, st.InsertEvent(ctx, recent))

	counts, err := st.EventCounts(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, counts["search"])

	deleted, err := st.DeleteEventsBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestFeedbackSummary(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertFeedback(ctx, models.FeedbackRecord{
		OverallRating: 5, ScriptRating: 4, AudioRating: 3, Recommend: true,
	}))
	require.NoError(t, st.InsertFeedback(ctx, models.FeedbackRecord{
		OverallRating: 3, ScriptRating: 2, AudioRating: 1, Recommend: false,
	}))

	summary, err := st.GetFeedbackSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 4.0, summary.AvgOverall, 0.001)
	assert.InDelta(t, 0.5, summary.RecommendRate, 0.001)
}

func TestCuratedModelUpsertPreservesUsage(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entry := models.CuratedModel{
		ID:       "meta-llama/llama-3-70b",
		Name:     "Llama 3 70B",
		Provider: "meta-llama",
		Category: models.CategoryTopOverall,
	}
	require.NoError(t, st.UpsertCuratedModels(ctx, []models.CuratedModel{entry}))
	require.NoError(t, st.RecordModelUse(ctx, entry.ID, 1.5))

	// A catalog refresh must not wipe usage counters.
	require.NoError(t, st.UpsertCuratedModels(ctx, []models.CuratedModel{entry}))

	got, err := st.CuratedModelsByCategory(ctx, models.CategoryTopOverall)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].UsageCount)
}

func TestRecordModelUseDiscoversUnknownModels(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.RecordModelUse(ctx, "new-provider/new-model", 0.8))

	got, err := st.CuratedModelsByCategory(ctx, models.CategoryDiscovered)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new-provider/new-model", got[0].ID)
	assert.Equal(t, 1, got[0].UsageCount)
}
