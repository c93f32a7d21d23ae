package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/stumpworks/stumpcast/pkg/models"
)

const (
	// keyFormatPrefix is the expected OpenRouter key prefix.
	keyFormatPrefix = "sk-or-"

	// validationTTL is how long a verdict (valid or not) stays cached.
	validationTTL = time.Hour

	// probeTimeout bounds the live list-models probe.
	probeTimeout = 10 * time.Second
)

// ModelLister is the probe surface the validator needs.
type ModelLister interface {
	ListModels(ctx context.Context, key string) ([]string, error)
}

// ValidationCache is the persistence surface the validator needs.
type ValidationCache interface {
	CacheKeyValidation(ctx context.Context, v models.KeyValidation) error
	LookupKeyValidation(ctx context.Context, keyHash string) (models.KeyValidation, bool, error)
}

// Verdict is the outcome of validating a candidate key.
type Verdict struct {
	Valid      bool   `json:"valid"`
	ModelCount int    `json:"model_count,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	Cached     bool   `json:"cached"`
}

// Validator checks candidate keys against format rules, the verdict cache,
// and a live list-models probe.
type Validator struct {
	lister ModelLister
	cache  ValidationCache
}

// NewValidator creates a key validator.
func NewValidator(lister ModelLister, cache ValidationCache) *Validator {
	return &Validator{lister: lister, cache: cache}
}

// HashKey returns the secure hash under which verdicts are cached. The raw
// key is never persisted.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Validate returns the verdict for a candidate key. Invalid outcomes are
// cached as aggressively as valid ones so a bad key does not hammer the
// provider.
func (v *Validator) Validate(ctx context.Context, key string) (Verdict, error) {
	if !strings.HasPrefix(key, keyFormatPrefix) {
		return Verdict{Valid: false, ErrorCode: CodeInvalidKey}, nil
	}

	hash := HashKey(key)
	if cached, hit, err := v.cache.LookupKeyValidation(ctx, hash); err != nil {
		slog.Warn("Key validation cache lookup failed", "error", err)
	} else if hit {
		return Verdict{
			Valid:      cached.IsValid,
			ModelCount: cached.ModelCount,
			ErrorCode:  cached.ErrorCode,
			Cached:     true,
		}, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	verdict := Verdict{}
	ids, err := v.lister.ListModels(probeCtx, key)
	if err != nil {
		var pe *ProviderError
		if !errors.As(err, &pe) {
			return Verdict{}, err
		}
		verdict.ErrorCode = pe.Code
	} else {
		verdict.Valid = true
		verdict.ModelCount = len(ids)
	}

	now := time.Now().UTC()
	record := models.KeyValidation{
		KeyHash:     hash,
		IsValid:     verdict.Valid,
		ModelCount:  verdict.ModelCount,
		ErrorCode:   verdict.ErrorCode,
		ValidatedAt: now,
		ExpiresAt:   now.Add(validationTTL),
	}
	if err := v.cache.CacheKeyValidation(ctx, record); err != nil {
		slog.Warn("Key validation cache write failed", "error", err)
	}
	return verdict, nil
}
