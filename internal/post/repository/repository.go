package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/post/domain"
)

type Repository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindByAuthors(ctx context.Context, authorIDs []string) ([]domain.Post, error)
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, postID string, comment domain.Comment) error
	SoftDelete(ctx context.Context, postID string) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, post *domain.Post) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO posts (id, author_id, content, image_url)
		VALUES ($1, $2, $3, $4)`,
		post.ID, post.AuthorID, post.Content, post.ImageURL,
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	return nil
}

// FindByID returns the record even when it is soft-deleted; the service layer
// decides whether a deleted post is visible.
func (r *PgRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, author_id, content, image_url, likes, comments, is_deleted, created_at
		FROM posts WHERE id = $1`,
		id,
	)
	return scanPost(row)
}

// FindByAuthors returns the non-deleted posts of the given authors, newest
// first.
func (r *PgRepository) FindByAuthors(ctx context.Context, authorIDs []string) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return []domain.Post{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, author_id, content, image_url, likes, comments, is_deleted, created_at
		FROM posts
		WHERE author_id = ANY($1::text[]) AND NOT is_deleted
		ORDER BY created_at DESC`,
		authorIDs,
	)
	if err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return posts, nil
}

// AddLike sets the user's like in one guarded statement; false means the like
// was already present.
func (r *PgRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET likes = likes || jsonb_build_object($2::text, true)
		WHERE id = $1 AND NOT (likes ? $2) AND NOT is_deleted`,
		postID, userID,
	)
	if err != nil {
		return false, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET likes = likes - $2::text
		WHERE id = $1 AND likes ? $2 AND NOT is_deleted`,
		postID, userID,
	)
	if err != nil {
		return false, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddComment prepends the comment so the embedded list stays newest first.
func (r *PgRepository) AddComment(ctx context.Context, postID string, comment domain.Comment) error {
	encoded, err := json.Marshal(comment)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET comments = jsonb_build_array($2::jsonb) || comments
		WHERE id = $1 AND NOT is_deleted`,
		postID, string(encoded),
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrPostNotFound
	}
	return nil
}

func (r *PgRepository) SoftDelete(ctx context.Context, postID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET is_deleted = TRUE WHERE id = $1 AND NOT is_deleted`,
		postID,
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrPostNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	var likesRaw, commentsRaw []byte

	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Content, &p.ImageURL,
		&likesRaw, &commentsRaw, &p.IsDeleted, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, commonerrors.ErrPostNotFound
		}
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}

	if err := json.Unmarshal(likesRaw, &p.Likes); err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	if err := json.Unmarshal(commentsRaw, &p.Comments); err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	if p.Likes == nil {
		p.Likes = map[string]bool{}
	}
	if p.Comments == nil {
		p.Comments = []domain.Comment{}
	}
	return &p, nil
}
