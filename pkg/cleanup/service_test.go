package cleanup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCleaner struct {
	calls atomic.Int64
	last  atomic.Int64
}

func (c *countingCleaner) Cleanup(_ context.Context, retention time.Duration) (int64, error) {
	c.calls.Add(1)
	c.last.Store(int64(retention))
	return 0, nil
}

func TestServiceSweepsOnStartAndTick(t *testing.T) {
	cleaner := &countingCleaner{}
	s := NewService(cleaner, 24*time.Hour, 10*time.Millisecond)

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return cleaner.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "expected the initial sweep plus at least one tick")

	assert.Equal(t, int64(24*time.Hour), cleaner.last.Load())
}

func TestServiceStopIsIdempotent(t *testing.T) {
	cleaner := &countingCleaner{}
	s := NewService(cleaner, time.Hour, time.Hour)

	s.Start(context.Background())
	s.Start(context.Background()) // second start is a no-op
	s.Stop()
	s.Stop() // second stop must not panic

	after := cleaner.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, cleaner.calls.Load(), "no sweeps after stop")
}

func TestNewServiceDefaultsInterval(t *testing.T) {
	s := NewService(&countingCleaner{}, time.Hour, 0)
	assert.Equal(t, time.Hour, s.interval)
}
