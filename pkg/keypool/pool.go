// Package keypool tracks LLM provider credentials with priority, cooldown
// and usage counters. It is the only component that mutates key state.
package keypool

import (
	"sync"
	"time"
)

// Error kinds accepted by MarkError.
const (
	ErrKindInvalidKey = "INVALID_KEY"
	ErrKindRateLimit  = "RATE_LIMITED"
	ErrKindOther      = "OTHER"
)

// DefaultCooldown is applied when a rate-limit duration is not supplied.
const DefaultCooldown = 60 * time.Second

// prefixLen is how much of the raw key ever leaves the pool.
const prefixLen = 12

type poolKey struct {
	key              string
	priority         int
	credit           int // smooth weighted round-robin accumulator
	lastUsed         time.Time
	rateLimitedUntil time.Time
	successCount     int
	errorCount       int
}

// KeyStats is the observable per-key summary. The raw key is replaced by a
// short prefix.
type KeyStats struct {
	Prefix           string     `json:"prefix"`
	Priority         int        `json:"priority"`
	SuccessCount     int        `json:"success_count"`
	ErrorCount       int        `json:"error_count"`
	LastUsed         *time.Time `json:"last_used,omitempty"`
	RateLimitedUntil *time.Time `json:"rate_limited_until,omitempty"`
}

// Stats summarizes the pool.
type Stats struct {
	TotalKeys     int        `json:"total_keys"`
	AvailableKeys int        `json:"available_keys"`
	Keys          []KeyStats `json:"keys"`
}

// Pool is a priority-weighted round-robin over validated keys. Higher
// priority keys are served proportionally more often. All methods are safe
// for concurrent use.
type Pool struct {
	mu   sync.Mutex
	keys []*poolKey
	now  func() time.Time
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{now: time.Now}
}

// Add registers a key. Priority is clamped to [1, 10]. Re-adding an existing
// key updates its priority.
func (p *Pool) Add(key string, priority int) {
	if priority < 1 {
		priority = 1
	}
	if priority > 10 {
		priority = 10
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range p.keys {
		if k.key == key {
			k.priority = priority
			return
		}
	}
	p.keys = append(p.keys, &poolKey{key: key, priority: priority})
}

// Len returns the number of keys in the pool.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Next returns the next key under smooth weighted round-robin, skipping keys
// whose cooldown is still active. Expired cooldowns are cleared on each
// pass. Returns "" when no key is selectable.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var best *poolKey
	total := 0
	for _, k := range p.keys {
		if !k.rateLimitedUntil.IsZero() && !k.rateLimitedUntil.After(now) {
			k.rateLimitedUntil = time.Time{}
		}
		if k.rateLimitedUntil.After(now) {
			continue
		}
		k.credit += k.priority
		total += k.priority
		if best == nil || k.credit > best.credit {
			best = k
		}
	}
	if best == nil {
		return ""
	}
	best.credit -= total
	best.lastUsed = now
	return best.key
}

// MarkSuccess records a successful call for key.
func (p *Pool) MarkSuccess(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if k := p.find(key); k != nil {
		k.successCount++
	}
}

// MarkRateLimited puts key on cooldown for d (DefaultCooldown when d <= 0)
// and counts the error.
func (p *Pool) MarkRateLimited(key string, d time.Duration) {
	if d <= 0 {
		d = DefaultCooldown
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if k := p.find(key); k != nil {
		k.rateLimitedUntil = p.now().Add(d)
		k.errorCount++
	}
}

// MarkError records a failed call. INVALID_KEY removes the key from the
// pool; other kinds only count.
func (p *Pool) MarkError(key, kind string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if kind == ErrKindInvalidKey {
		for i, k := range p.keys {
			if k.key == key {
				p.keys = append(p.keys[:i], p.keys[i+1:]...)
				return
			}
		}
		return
	}
	if k := p.find(key); k != nil {
		k.errorCount++
	}
}

// Stats returns the observable pool summary.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	stats := Stats{TotalKeys: len(p.keys)}
	for _, k := range p.keys {
		ks := KeyStats{
			Prefix:       keyPrefix(k.key),
			Priority:     k.priority,
			SuccessCount: k.successCount,
			ErrorCount:   k.errorCount,
		}
		if !k.lastUsed.IsZero() {
			t := k.lastUsed
			ks.LastUsed = &t
		}
		if k.rateLimitedUntil.After(now) {
			t := k.rateLimitedUntil
			ks.RateLimitedUntil = &t
		} else {
			stats.AvailableKeys++
		}
		stats.Keys = append(stats.Keys, ks)
	}
	return stats
}

func (p *Pool) find(key string) *poolKey {
	for _, k := range p.keys {
		if k.key == key {
			return k
		}
	}
	return nil
}

func keyPrefix(key string) string {
	if len(key) <= prefixLen {
		return key
	}
	return key[:prefixLen] + "..."
}
