package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stumpworks/stumpcast/pkg/models"
)

type fakeLister struct {
	ids   []string
	err   error
	calls int
}

func (f *fakeLister) ListModels(context.Context, string) ([]string, error) {
	f.calls++
	return f.ids, f.err
}

type memCache struct {
	records map[string]models.KeyValidation
	now     time.Time
}

func newMemCache() *memCache {
	return &memCache{records: map[string]models.KeyValidation{}, now: time.Now().UTC()}
}

func (m *memCache) CacheKeyValidation(_ context.Context, v models.KeyValidation) error {
	m.records[v.KeyHash] = v
	return nil
}

func (m *memCache) LookupKeyValidation(_ context.Context, keyHash string) (models.KeyValidation, bool, error) {
	v, ok := m.records[keyHash]
	if !ok || !v.ExpiresAt.After(m.now) {
		return models.KeyValidation{}, false, nil
	}
	return v, true, nil
}

func TestValidateRejectsMalformedKeyWithoutProbe(t *testing.T) {
	lister := &fakeLister{}
	v := NewValidator(lister, newMemCache())

	verdict, err := v.Validate(context.Background(), "not-an-openrouter-key")
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.Equal(t, CodeInvalidKey, verdict.ErrorCode)
	assert.Equal(t, 0, lister.calls, "format rejection must not hit the provider")
}

func TestValidateProbesAndCaches(t *testing.T) {
	lister := &fakeLister{ids: []string{"a/x", "b/y", "c/z"}}
	cache := newMemCache()
	v := NewValidator(lister, cache)

	verdict, err := v.Validate(context.Background(), "sk-or-v1-good")
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.Equal(t, 3, verdict.ModelCount)
	assert.False(t, verdict.Cached)

	// Second call is served from the cache.
	verdict, err = v.Validate(context.Background(), "sk-or-v1-good")
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.True(t, verdict.Cached)
	assert.Equal(t, 1, lister.calls)
}

func TestValidateCachesInvalidVerdicts(t *testing.T) {
	lister := &fakeLister{err: &ProviderError{StatusCode: 401, Code: CodeInvalidKey, Err: errors.New("401")}}
	v := NewValidator(lister, newMemCache())

	verdict, err := v.Validate(context.Background(), "sk-or-v1-bad")
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.Equal(t, CodeInvalidKey, verdict.ErrorCode)

	// A bad key must not hammer the provider either.
	_, err = v.Validate(context.Background(), "sk-or-v1-bad")
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)
}

func TestValidateExpiredCacheEntryReprobes(t *testing.T) {
	lister := &fakeLister{ids: []string{"a/x"}}
	cache := newMemCache()
	v := NewValidator(lister, cache)

	_, err := v.Validate(context.Background(), "sk-or-v1-good")
	require.NoError(t, err)

	// Push the clock past the TTL.
	cache.now = cache.now.Add(validationTTL + time.Minute)

	verdict, err := v.Validate(context.Background(), "sk-or-v1-good")
	require.NoError(t, err)
	assert.False(t, verdict.Cached)
	assert.Equal(t, 2, lister.calls)
}

func TestValidateMapsProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode string
	}{
		{"forbidden", &ProviderError{StatusCode: 403, Code: CodeInsufficientPermissions}, CodeInsufficientPermissions},
		{"rate limited", &ProviderError{StatusCode: 429, Code: CodeRateLimited}, CodeRateLimited},
		{"network failure", &ProviderError{Code: CodeNetworkError}, CodeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(&fakeLister{err: tt.err}, newMemCache())
			verdict, err := v.Validate(context.Background(), "sk-or-v1-key")
			require.NoError(t, err)
			assert.False(t, verdict.Valid)
			assert.Equal(t, tt.expectCode, verdict.ErrorCode)
		})
	}
}

func TestValidateNonProviderErrorPropagates(t *testing.T) {
	v := NewValidator(&fakeLister{err: errors.New("unexpected")}, newMemCache())
	_, err := v.Validate(context.Background(), "sk-or-v1-key")
	assert.Error(t, err)
}

func TestHashKeyStableAndOpaque(t *testing.T) {
	h1 := HashKey("sk-or-v1-secret")
	h2 := HashKey("sk-or-v1-secret")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "secret")
}
