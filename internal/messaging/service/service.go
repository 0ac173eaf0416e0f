package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glimmer-social/backend/internal/common/constants"
	"github.com/glimmer-social/backend/internal/common/crypto"
	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/logger"
	"github.com/glimmer-social/backend/internal/messaging/domain"
	"github.com/glimmer-social/backend/internal/messaging/repository"
	"github.com/glimmer-social/backend/internal/observability/metrics"
)

type Service struct {
	conversations repository.Repository
	ids           crypto.IDGenerator
	log           *logger.Logger
}

func New(conversations repository.Repository, ids crypto.IDGenerator, log *logger.Logger) *Service {
	return &Service{
		conversations: conversations,
		ids:           ids,
		log:           log,
	}
}

// GetOrCreate returns the conversation between a and b, creating it on first
// contact. The lookup-then-create pair is not atomic: two racing first
// contacts can both create a conversation, and there is no uniqueness
// constraint to stop them. Sequential calls always converge on the earliest
// conversation for the pair.
func (s *Service) GetOrCreate(ctx context.Context, a, b string) (*domain.Conversation, error) {
	existing, err := s.conversations.FindConversationByMembers(ctx, a, b)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, commonerrors.ErrConversationNotFound) {
		return nil, err
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	conversation := &domain.Conversation{
		ID:        id,
		Members:   []string{a, b},
		CreatedAt: time.Now(),
	}
	if err := s.conversations.CreateConversation(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// PostMessage appends to the conversation. The sender must be a member.
func (s *Service) PostMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, commonerrors.ErrEmptyContent
	}
	if len(text) > constants.MaxMessageLength {
		return nil, commonerrors.ErrContentTooLong
	}

	conversation, err := s.conversations.FindConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasMember(senderID) {
		return nil, commonerrors.ErrNotConversationMember
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	message := &domain.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	if err := s.conversations.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	metrics.MessagesStoredTotal.Inc()
	return message, nil
}

func (s *Service) GetMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if _, err := s.conversations.FindConversationByID(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.conversations.ListMessages(ctx, conversationID)
}

func (s *Service) GetConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.conversations.ListConversationsByMember(ctx, userID)
}
