package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/glimmer-social/backend/internal/auth/domain"
	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
)

// TokenRepository stores the per-user verification (OTP) and reset token
// hashes. Upserts replace any previous token for the user.
type TokenRepository interface {
	UpsertVerificationToken(ctx context.Context, userID, tokenHash string) error
	FindVerificationToken(ctx context.Context, userID string) (*domain.StoredToken, error)
	DeleteVerificationToken(ctx context.Context, userID string) error

	CreateResetToken(ctx context.Context, userID, tokenHash string) error
	FindResetToken(ctx context.Context, userID string) (*domain.StoredToken, error)
	DeleteResetToken(ctx context.Context, userID string) error
	DeleteExpiredResetTokens(ctx context.Context) (int64, error)
}

type PgTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgTokenRepository(pool *pgxpool.Pool) *PgTokenRepository {
	return &PgTokenRepository{pool: pool}
}

func (r *PgTokenRepository) UpsertVerificationToken(ctx context.Context, userID, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO verification_tokens (user_id, token_hash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash, created_at = now()`,
		userID, tokenHash,
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	return nil
}

func (r *PgTokenRepository) FindVerificationToken(ctx context.Context, userID string) (*domain.StoredToken, error) {
	return r.findToken(ctx,
		`SELECT user_id, token_hash, created_at FROM verification_tokens WHERE user_id = $1`,
		userID,
	)
}

func (r *PgTokenRepository) DeleteVerificationToken(ctx context.Context, userID string) error {
	return r.deleteToken(ctx, `DELETE FROM verification_tokens WHERE user_id = $1`, userID)
}

// CreateResetToken inserts without replacing: an outstanding reset token
// blocks new ones until it expires.
func (r *PgTokenRepository) CreateResetToken(ctx context.Context, userID, tokenHash string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reset_tokens (user_id, token_hash) VALUES ($1, $2)`,
		userID, tokenHash,
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	return nil
}

func (r *PgTokenRepository) FindResetToken(ctx context.Context, userID string) (*domain.StoredToken, error) {
	return r.findToken(ctx,
		`SELECT user_id, token_hash, created_at FROM reset_tokens WHERE user_id = $1`,
		userID,
	)
}

func (r *PgTokenRepository) DeleteResetToken(ctx context.Context, userID string) error {
	return r.deleteToken(ctx, `DELETE FROM reset_tokens WHERE user_id = $1`, userID)
}

func (r *PgTokenRepository) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reset_tokens WHERE created_at < now() - interval '1 hour'`,
	)
	if err != nil {
		return 0, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgTokenRepository) findToken(ctx context.Context, query, userID string) (*domain.StoredToken, error) {
	var t domain.StoredToken
	err := r.pool.QueryRow(ctx, query, userID).Scan(&t.UserID, &t.TokenHash, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, commonerrors.ErrTokenNotFound
		}
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return &t, nil
}

func (r *PgTokenRepository) deleteToken(ctx context.Context, query, userID string) error {
	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	return nil
}
