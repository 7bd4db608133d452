package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/TodoGo/pkg/database"
	apperrors "github.com/utafrali/TodoGo/pkg/errors"
)

// TokenBlacklistRepository implements repository.TokenBlacklistRepository
// using PostgreSQL.
type TokenBlacklistRepository struct {
	db database.DBTX
}

// NewTokenBlacklistRepository creates a new PostgreSQL-backed token blacklist repository.
func NewTokenBlacklistRepository(db database.DBTX) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{db: db}
}

// IsRevoked reports whether the exact token string is present in the blacklist.
// Expired entries still count as revoked until pruned; the token they belong to
// is rejected by expiry validation anyway.
func (r *TokenBlacklistRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE token = $1)`

	var revoked bool
	if err := r.db.QueryRow(ctx, query, token).Scan(&revoked); err != nil {
		return false, fmt.Errorf("check token blacklist: %w", err)
	}

	return revoked, nil
}

// Revoke records the token in the blacklist and prunes entries that are
// already past their expiry, in a single transaction. Inserting a token that
// is already blacklisted returns an error wrapping apperrors.ErrConflict.
func (r *TokenBlacklistRepository) Revoke(ctx context.Context, token, userID string, expiresAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`DELETE FROM token_blacklist WHERE expires_at < $1`,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("prune expired blacklist entries: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO token_blacklist (id, token, user_id, blacklisted_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), token, userID, time.Now().UTC(), expiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("token already blacklisted: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("insert blacklist entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// PruneExpired deletes all entries whose expiry predates now and returns the
// number of rows removed.
func (r *TokenBlacklistRepository) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("prune expired blacklist entries: %w", err)
	}

	return ct.RowsAffected(), nil
}
