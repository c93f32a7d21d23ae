package keypool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextEmptyPool(t *testing.T) {
	p := New()
	assert.Equal(t, "", p.Next())
}

func TestNextWeightedByPriority(t *testing.T) {
	p := New()
	p.Add("key-high", 3)
	p.Add("key-low", 1)

	counts := map[string]int{}
	for i := 0; i < 40; i++ {
		counts[p.Next()]++
	}

	// Smooth weighted round-robin serves keys proportionally to priority.
	assert.Equal(t, 30, counts["key-high"])
	assert.Equal(t, 10, counts["key-low"])
}

func TestRateLimitedKeySkippedUntilCooldownExpires(t *testing.T) {
	p := New()
	now := time.Now()
	p.now = func() time.Time { return now }

	p.Add("key-a", 1)
	p.Add("key-b", 1)

	p.MarkRateLimited("key-a", 0)
	for i := 0; i < 5; i++ {
		assert.Equal(t, "key-b", p.Next(), "cooled-down key must be skipped")
	}

	// After the default cooldown the key is selectable again.
	now = now.Add(DefaultCooldown + time.Second)
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		seen[p.Next()] = true
	}
	assert.True(t, seen["key-a"])
	assert.True(t, seen["key-b"])
}

func TestAllKeysCooledDownReturnsEmpty(t *testing.T) {
	p := New()
	p.Add("key-a", 1)
	p.MarkRateLimited("key-a", time.Minute)
	assert.Equal(t, "", p.Next())
}

func TestMarkErrorInvalidKeyEvicts(t *testing.T) {
	p := New()
	p.Add("key-a", 1)
	require.Equal(t, 1, p.Len())

	p.MarkError("key-a", ErrKindInvalidKey)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, "", p.Next())
}

func TestMarkErrorOtherOnlyCounts(t *testing.T) {
	p := New()
	p.Add("key-a", 1)
	p.MarkError("key-a", ErrKindOther)

	require.Equal(t, 1, p.Len())
	stats := p.Stats()
	require.Len(t, stats.Keys, 1)
	assert.Equal(t, 1, stats.Keys[0].ErrorCount)
}

func TestAddClampsPriority(t *testing.T) {
	p := New()
	p.Add("key-a", 0)
	p.Add("key-b", 99)

	stats := p.Stats()
	require.Len(t, stats.Keys, 2)
	assert.Equal(t, 1, stats.Keys[0].Priority)
	assert.Equal(t, 10, stats.Keys[1].Priority)
}

func TestStatsNeverExposesFullKey(t *testing.T) {
	p := New()
	p.Add("sk-or-v1-abcdefghijklmnopqrstuvwxyz", 1)
	p.MarkSuccess("sk-or-v1-abcdefghijklmnopqrstuvwxyz")

	stats := p.Stats()
	require.Len(t, stats.Keys, 1)
	assert.Equal(t, "sk-or-v1-abc...", stats.Keys[0].Prefix)
	assert.Equal(t, 1, stats.Keys[0].SuccessCount)
	assert.Equal(t, 1, stats.AvailableKeys)
}

func TestReAddUpdatesPriority(t *testing.T) {
	p := New()
	p.Add("key-a", 2)
	p.Add("key-a", 7)

	require.Equal(t, 1, p.Len())
	assert.Equal(t, 7, p.Stats().Keys[0].Priority)
}
