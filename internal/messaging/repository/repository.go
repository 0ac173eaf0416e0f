package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/messaging/domain"
)

type Repository interface {
	CreateConversation(ctx context.Context, c *domain.Conversation) error
	FindConversationByID(ctx context.Context, id string) (*domain.Conversation, error)
	FindConversationByMembers(ctx context.Context, a, b string) (*domain.Conversation, error)
	ListConversationsByMember(ctx context.Context, userID string) ([]domain.Conversation, error)
	CreateMessage(ctx context.Context, m *domain.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) CreateConversation(ctx context.Context, c *domain.Conversation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversations (id, members) VALUES ($1, $2)`,
		c.ID, c.Members,
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	return nil
}

func (r *PgRepository) FindConversationByID(ctx context.Context, id string) (*domain.Conversation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, members, created_at FROM conversations WHERE id = $1`,
		id,
	)
	return scanConversation(row)
}

// FindConversationByMembers matches the exact two-member pair regardless of
// order.
func (r *PgRepository) FindConversationByMembers(ctx context.Context, a, b string) (*domain.Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, members, created_at
		FROM conversations
		WHERE members @> ARRAY[$1, $2]::text[] AND cardinality(members) = 2
		ORDER BY created_at ASC
		LIMIT 1`,
		a, b,
	)
	return scanConversation(row)
}

func (r *PgRepository) ListConversationsByMember(ctx context.Context, userID string) ([]domain.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, members, created_at
		FROM conversations
		WHERE members @> ARRAY[$1]::text[]
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	defer rows.Close()

	result := []domain.Conversation{}
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.Members, &c.CreatedAt); err != nil {
			return nil, commonerrors.ErrStoreFailure.WithCause(err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return result, nil
}

func (r *PgRepository) CreateMessage(ctx context.Context, m *domain.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, text)
		VALUES ($1, $2, $3, $4)`,
		m.ID, m.ConversationID, m.SenderID, m.Text,
	)
	if err != nil {
		return commonerrors.ErrStoreFailure.WithCause(err)
	}
	return nil
}

func (r *PgRepository) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender_id, text, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	defer rows.Close()

	result := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.CreatedAt); err != nil {
			return nil, commonerrors.ErrStoreFailure.WithCause(err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return result, nil
}

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := row.Scan(&c.ID, &c.Members, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, commonerrors.ErrConversationNotFound
		}
		return nil, commonerrors.ErrStoreFailure.WithCause(err)
	}
	return &c, nil
}
