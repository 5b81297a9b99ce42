package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CalumRakk/resume-project/pkg/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenBlacklistRepository stores revoked refresh token ids in Postgres.
type TokenBlacklistRepository struct {
	db *pgxpool.Pool
}

var _ auth.Blacklist = (*TokenBlacklistRepository)(nil)

func NewTokenBlacklistRepository(db *pgxpool.Pool) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{db: db}
}

// Add is idempotent; the first write wins.
func (r *TokenBlacklistRepository) Add(ctx context.Context, jti, subject string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("blacklist: empty jti")
	}
	query := `INSERT INTO token_blacklist (jti, subject, expires_at, blacklisted_at)
              VALUES ($1, $2, $3, NOW())
              ON CONFLICT (jti) DO NOTHING`
	if _, err := r.db.Exec(ctx, query, jti, subject, expiresAt); err != nil {
		return fmt.Errorf("blacklist: insert: %w", err)
	}
	return nil
}

// Contains ignores entries whose token has already expired.
func (r *TokenBlacklistRepository) Contains(ctx context.Context, jti string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1 AND expires_at > NOW())`
	if err := r.db.QueryRow(ctx, query, jti).Scan(&exists); err != nil {
		return false, fmt.Errorf("blacklist: lookup: %w", err)
	}
	return exists, nil
}

// DeleteExpired removes rows for tokens that can no longer verify anyway.
func (r *TokenBlacklistRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
