package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/notification/domain"
)

type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.HydratedNotification, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, n *domain.Notification) error {
	var postID any
	if n.PostID != "" {
		postID = n.PostID
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, type, recipient_id, actor_id, post_id, content)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, string(n.Type), n.RecipientID, n.ActorID, postID, n.Content,
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	return nil
}

// ListByRecipient returns the recipient's notifications newest first, with the
// actor profile and referenced post hydrated in the same query.
func (r *PgRepository) ListByRecipient(ctx context.Context, recipientID string) ([]domain.HydratedNotification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT n.id, n.type, n.recipient_id, n.actor_id,
			COALESCE(n.post_id, ''), n.content, n.created_at,
			actor.username, actor.picture_url,
			COALESCE(p.content, ''), COALESCE(p.image_url, '')
		FROM notifications n
		JOIN users actor ON actor.id = n.actor_id
		LEFT JOIN posts p ON p.id = n.post_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC`,
		recipientID,
	)
	if err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	defer rows.Close()

	result := []domain.HydratedNotification{}
	for rows.Next() {
		var h domain.HydratedNotification
		var typ string
		err := rows.Scan(
			&h.ID, &typ, &h.RecipientID, &h.ActorID,
			&h.PostID, &h.Content, &h.CreatedAt,
			&h.ActorUsername, &h.ActorPicture,
			&h.PostContent, &h.PostImage,
		)
		if err != nil {
			return nil, commonerrors.ErrStoreFailure.WithCause(err)
		}
		h.Type = domain.NotificationType(typ)
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return result, nil
}
