package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stumpworks/stumpcast/pkg/models"
)

type keyValidationRow struct {
	KeyHash     string         `db:"key_hash"`
	IsValid     bool           `db:"is_valid"`
	ModelCount  int            `db:"model_count"`
	ErrorCode   sql.NullString `db:"error_code"`
	ValidatedAt time.Time      `db:"validated_at"`
	ExpiresAt   time.Time      `db:"expires_at"`
}

// CacheKeyValidation stores a validation verdict (valid or not) under the
// key's secure hash, replacing any previous verdict.
func (s *Store) CacheKeyValidation(ctx context.Context, v models.KeyValidation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO key_validations (key_hash, is_valid, model_count, error_code, validated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (key_hash) DO UPDATE SET
			is_valid = excluded.is_valid,
			model_count = excluded.model_count,
			error_code = excluded.error_code,
			validated_at = excluded.validated_at,
			expires_at = excluded.expires_at`,
		v.KeyHash, v.IsValid, v.ModelCount, nullable(v.ErrorCode), v.ValidatedAt, v.ExpiresAt)
	if err != nil {
		return ioErr("cache_key_validation", err)
	}
	return nil
}

// LookupKeyValidation returns the cached verdict for a key hash. A lookup is
// a hit only while expires_at is in the future.
func (s *Store) LookupKeyValidation(ctx context.Context, keyHash string) (models.KeyValidation, bool, error) {
	var row keyValidationRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM key_validations WHERE key_hash = ? AND expires_at > ?",
		keyHash, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return models.KeyValidation{}, false, nil
	}
	if err != nil {
		return models.KeyValidation{}, false, ioErr("lookup_key_validation", err)
	}
	return models.KeyValidation{
		KeyHash:     row.KeyHash,
		IsValid:     row.IsValid,
		ModelCount:  row.ModelCount,
		ErrorCode:   row.ErrorCode.String,
		ValidatedAt: row.ValidatedAt,
		ExpiresAt:   row.ExpiresAt,
	}, true, nil
}
