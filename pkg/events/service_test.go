package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stumpworks/stumpcast/pkg/models"
)

type memStore struct {
	mu        sync.Mutex
	events    []models.Event
	insertErr error
	deleted   int64
	cutoff    time.Time
}

func (m *memStore) InsertEvent(_ context.Context, ev models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *memStore) EventCounts(context.Context, time.Time) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, ev := range m.events {
		out[ev.EventType]++
	}
	return out, nil
}

func (m *memStore) DeleteEventsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoff = cutoff
	return m.deleted, nil
}

func TestRecordAppendsAndCounts(t *testing.T) {
	st := &memStore{}
	s := NewService(st)
	ctx := context.Background()

	s.Record(ctx, TypeSearch, map[string]any{"keyword": "rally"}, "1.2.3.4", "test-agent")
	s.Record(ctx, TypeSearch, nil, "", "")
	s.Record(ctx, TypeFinalized, nil, "", "")

	counters, since := s.Counters()
	assert.Equal(t, 2, counters[TypeSearch])
	assert.Equal(t, 1, counters[TypeFinalized])
	assert.False(t, since.IsZero())

	require.Len(t, st.events, 3)
	assert.Equal(t, "1.2.3.4", st.events[0].IP)
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	st := &memStore{insertErr: errors.New("disk full")}
	s := NewService(st)

	// Must not panic or propagate; the counter still advances.
	s.Record(context.Background(), TypeError, nil, "", "")

	counters, _ := s.Counters()
	assert.Equal(t, 1, counters[TypeError])
}

func TestCountersReturnsCopy(t *testing.T) {
	s := NewService(&memStore{})
	s.Record(context.Background(), TypeRequest, nil, "", "")

	counters, _ := s.Counters()
	counters[TypeRequest] = 99

	fresh, _ := s.Counters()
	assert.Equal(t, 1, fresh[TypeRequest])
}

func TestCleanupUsesRetentionCutoff(t *testing.T) {
	st := &memStore{deleted: 7}
	s := NewService(st)

	deleted, err := s.Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)

	expected := time.Now().UTC().Add(-24 * time.Hour)
	assert.WithinDuration(t, expected, st.cutoff, 5*time.Second)
}
