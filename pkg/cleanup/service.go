// Package cleanup enforces the event log retention policy in the background.
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// EventCleaner is the slice of the event service the loop needs.
type EventCleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// Service periodically deletes events older than the retention window.
// Deletion is idempotent and safe to run alongside writers.
type Service struct {
	events    EventCleaner
	retention time.Duration
	interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a cleanup service. interval defaults to one hour when
// zero.
func NewService(events EventCleaner, retention, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{events: events, retention: retention, interval: interval}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started",
		"retention", s.retention, "interval", s.interval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	count, err := s.events.Cleanup(ctx, s.retention)
	if err != nil {
		slog.Error("Retention: event cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: deleted old events", "count", count)
	}
}
