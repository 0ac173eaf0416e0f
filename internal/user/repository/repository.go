package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/user/domain"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailOrUsername(ctx context.Context, emailOrUsername string) (*domain.User, error)
	FindProfiles(ctx context.Context, ids []string) ([]domain.Profile, error)
	FindSuggestions(ctx context.Context, userID string, excluded []string, limit int) ([]domain.Profile, error)
	AddFollower(ctx context.Context, userID, followerID string) (bool, error)
	RemoveFollower(ctx context.Context, userID, followerID string) (bool, error)
	AddFollowing(ctx context.Context, userID, followingID string) (bool, error)
	RemoveFollowing(ctx context.Context, userID, followingID string) (bool, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdatePicture(ctx context.Context, userID, pictureURL string) error
	SetVerified(ctx context.Context, userID string) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `id, username, name, email, password_hash, picture_url, cover_url,
	bio, city, hometown, verified, followers, followings, created_at, updated_at`

func (r *PgRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, name, email, password_hash, picture_url,
			cover_url, bio, city, hometown, verified, followers, followings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '{}', '{}')`,
		user.ID, user.Username, user.Name, user.Email, user.PasswordHash,
		user.PictureURL, user.CoverURL, user.Bio, user.City, user.From,
		user.IsVerified,
	)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PgRepository) FindByEmailOrUsername(ctx context.Context, emailOrUsername string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $1`,
		emailOrUsername,
	)
	return scanUser(row)
}

// FindProfiles returns public projections for ids, preserving the input order.
func (r *PgRepository) FindProfiles(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return []domain.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT users.id, users.username, users.name, users.picture_url
		FROM unnest($1::text[]) WITH ORDINALITY AS wanted(id, ord)
		JOIN users ON users.id = wanted.id
		ORDER BY wanted.ord`,
		ids,
	)
	if err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func (r *PgRepository) FindSuggestions(ctx context.Context, userID string, excluded []string, limit int) ([]domain.Profile, error) {
	if excluded == nil {
		excluded = []string{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, username, name, picture_url
		FROM users
		WHERE id <> $1 AND NOT (id = ANY($2::text[]))
		ORDER BY created_at DESC
		LIMIT $3`,
		userID, excluded, limit,
	)
	if err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func (r *PgRepository) AddFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return r.mutateMembership(ctx, `
		UPDATE users
		SET followers = array_append(followers, $2), updated_at = now()
		WHERE id = $1 AND NOT (followers @> ARRAY[$2])`,
		userID, followerID,
	)
}

func (r *PgRepository) RemoveFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return r.mutateMembership(ctx, `
		UPDATE users
		SET followers = array_remove(followers, $2), updated_at = now()
		WHERE id = $1 AND followers @> ARRAY[$2]`,
		userID, followerID,
	)
}

func (r *PgRepository) AddFollowing(ctx context.Context, userID, followingID string) (bool, error) {
	return r.mutateMembership(ctx, `
		UPDATE users
		SET followings = array_append(followings, $2), updated_at = now()
		WHERE id = $1 AND NOT (followings @> ARRAY[$2])`,
		userID, followingID,
	)
}

func (r *PgRepository) RemoveFollowing(ctx context.Context, userID, followingID string) (bool, error) {
	return r.mutateMembership(ctx, `
		UPDATE users
		SET followings = array_remove(followings, $2), updated_at = now()
		WHERE id = $1 AND followings @> ARRAY[$2]`,
		userID, followingID,
	)
}

// mutateMembership runs a guarded single-statement array update. Zero rows
// affected means the membership was already in the requested state.
func (r *PgRepository) mutateMembership(ctx context.Context, query, userID, memberID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, query, userID, memberID)
	if err != nil {
		return false, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $2, name = $3, email = $4, bio = $5, city = $6,
			hometown = $7, cover_url = $8, updated_at = now()
		WHERE id = $1`,
		user.ID, user.Username, user.Name, user.Email, user.Bio,
		user.City, user.From, user.CoverURL,
	)
	if err != nil {
		return translateUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.updateColumn(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, passwordHash,
	)
}

func (r *PgRepository) UpdatePicture(ctx context.Context, userID, pictureURL string) error {
	return r.updateColumn(ctx,
		`UPDATE users SET picture_url = $2, updated_at = now() WHERE id = $1`,
		userID, pictureURL,
	)
}

func (r *PgRepository) SetVerified(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET verified = TRUE, updated_at = now() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) updateColumn(ctx context.Context, query, userID, value string) error {
	tag, err := r.pool.Exec(ctx, query, userID, value)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.PictureURL,
		&u.CoverURL, &u.Bio, &u.City, &u.From, &u.IsVerified,
		&u.Followers, &u.Followings, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, commonerrors.ErrUserNotFound
		}
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return &u, nil
}

func scanProfiles(rows pgx.Rows) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Name, &p.PictureURL); err != nil {
			return nil, commonerrors.ErrStoreFailure.WithCause(err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return profiles, nil
}

func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return commonerrors.ErrUsernameAlreadyExists.WithCause(err)
		case strings.Contains(pgErr.ConstraintName, "email"):
			return commonerrors.ErrEmailAlreadyExists.WithCause(err)
		}
	}
	return commonerrors.ErrStoreFailure.WithCause(err)
}
