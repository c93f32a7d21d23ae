// Package events records analytics events. The durable event log in the
// store is the source of truth; the in-memory counters are a cheap
// process-local view derived from it.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stumpworks/stumpcast/pkg/models"
)

// Well-known event types.
const (
	TypeRequest         = "request"
	TypeSearch          = "search"
	TypeScriptGenerated = "script_generated"
	TypeAudioGenerated  = "audio_generated"
	TypeFinalized       = "finalized"
	TypeError           = "error"
)

// Store is the persistence surface the event service needs.
type Store interface {
	InsertEvent(ctx context.Context, ev models.Event) error
	EventCounts(ctx context.Context, since time.Time) (map[string]int, error)
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service appends events and tracks process-local counters.
type Service struct {
	store Store

	mu       sync.Mutex
	counters map[string]int
	started  time.Time
}

// NewService creates an event service.
func NewService(store Store) *Service {
	return &Service{
		store:    store,
		counters: make(map[string]int),
		started:  time.Now().UTC(),
	}
}

// Record appends one event. Failures are logged, not propagated: analytics
// must never fail a user request.
func (s *Service) Record(ctx context.Context, eventType string, data map[string]any, ip, userAgent string) {
	s.mu.Lock()
	s.counters[eventType]++
	s.mu.Unlock()

	err := s.store.InsertEvent(ctx, models.Event{
		EventType: eventType,
		Data:      data,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("Failed to record event", "event_type", eventType, "error", err)
	}
}

// Counters returns a copy of the process-local counters and the time they
// started accumulating.
func (s *Service) Counters() (map[string]int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out, s.started
}

// Counts returns durable per-type totals since the given time.
func (s *Service) Counts(ctx context.Context, since time.Time) (map[string]int, error) {
	return s.store.EventCounts(ctx, since)
}

// Cleanup deletes events older than the retention window and returns the
// number removed.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return s.store.DeleteEventsBefore(ctx, cutoff)
}
