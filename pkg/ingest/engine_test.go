package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stumpworks/stumpcast/pkg/models"
	"github.com/stumpworks/stumpcast/pkg/sources"
	"github.com/stumpworks/stumpcast/pkg/store"
)

type fakeSource struct {
	name      string
	records   []models.Speech
	fetchErr  error
	available bool
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Verify(context.Context) sources.VerifyResult {
	return sources.VerifyResult{Available: f.available}
}

func (f *fakeSource) Fetch(context.Context, sources.FetchOptions) ([]models.Speech, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}

func speechesFor(source string, n int) []models.Speech {
	out := make([]models.Speech, n)
	for i := range out {
		out[i] = models.Speech{
			ID:     fmt.Sprintf("%s_%02d", source, i),
			Title:  fmt.Sprintf("Speech %02d", i),
			Source: source,
		}
	}
	return out
}

func newTestEngine(t *testing.T, srcs ...sources.Source) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewEngine(sources.NewRegistry(srcs...), st), st
}

func TestPopulateArchiveMergesAllSources(t *testing.T) {
	e, _ := newTestEngine(t,
		&fakeSource{name: "alpha", records: speechesFor("alpha", 3), available: true},
		&fakeSource{name: "beta", records: speechesFor("beta", 2), available: true},
	)

	result, err := e.PopulateArchive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Existing)
	assert.Equal(t, 5, result.Inserted)
	assert.Equal(t, 5, result.Total)
	assert.Empty(t, result.Errors)
}

func TestPopulateArchiveIsolatesSourceFailure(t *testing.T) {
	e, _ := newTestEngine(t,
		&fakeSource{name: "alpha", records: speechesFor("alpha", 3), available: true},
		&fakeSource{name: "broken", fetchErr: errors.New("connection refused")},
	)

	result, err := e.PopulateArchive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Inserted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "broken", result.Errors[0].Source)
	assert.Contains(t, result.Errors[0].Error, "connection refused")
}

func TestPopulateArchiveSkipsWhenPopulated(t *testing.T) {
	src := &fakeSource{name: "alpha", records: speechesFor("alpha", 5), available: true}
	e, st := newTestEngine(t, src)
	e.SetThreshold(2)

	_, err := st.UpsertSpeeches(context.Background(), speechesFor("seeded", 3))
	require.NoError(t, err)

	result, err := e.PopulateArchive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Existing)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 3, result.Total)
}

func TestPopulateArchiveIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, &fakeSource{name: "alpha", records: speechesFor("alpha", 3), available: true})
	e.SetThreshold(100)

	first, err := e.PopulateArchive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)

	second, err := e.PopulateArchive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 3, second.Total)
}

func TestVerifyAllReportsPerSource(t *testing.T) {
	e, _ := newTestEngine(t,
		&fakeSource{name: "up", available: true},
		&fakeSource{name: "down", available: false},
	)

	results := e.VerifyAll(context.Background())
	require.Len(t, results, 2)
	assert.True(t, results["up"].Available)
	assert.False(t, results["down"].Available)
}
