package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/logger"
	"github.com/glimmer-social/backend/internal/messaging/domain"
)

type mockRepo struct {
	conversations []*domain.Conversation
	messages      []*domain.Message
}

func (m *mockRepo) CreateConversation(ctx context.Context, c *domain.Conversation) error {
	copied := *c
	m.conversations = append(m.conversations, &copied)
	return nil
}

func (m *mockRepo) FindConversationByID(ctx context.Context, id string) (*domain.Conversation, error) {
	for _, c := range m.conversations {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, commonerrors.ErrConversationNotFound
}

func (m *mockRepo) FindConversationByMembers(ctx context.Context, a, b string) (*domain.Conversation, error) {
	for _, c := range m.conversations {
		if c.HasMember(a) && c.HasMember(b) && len(c.Members) == 2 {
			copied := *c
			return &copied, nil
		}
	}
	return nil, commonerrors.ErrConversationNotFound
}

func (m *mockRepo) ListConversationsByMember(ctx context.Context, userID string) ([]domain.Conversation, error) {
	result := []domain.Conversation{}
	for _, c := range m.conversations {
		if c.HasMember(userID) {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockRepo) CreateMessage(ctx context.Context, msg *domain.Message) error {
	copied := *msg
	m.messages = append(m.messages, &copied)
	return nil
}

func (m *mockRepo) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	result := []domain.Message{}
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			result = append(result, *msg)
		}
	}
	return result, nil
}

type seqIDs struct{ n int }

func (s *seqIDs) NewID() (string, error) {
	s.n++
	return fmt.Sprintf("id-%03d", s.n), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := &mockRepo{}
	log, _ := logger.New("", "test", "error")
	return New(repo, &seqIDs{}, log), repo
}

func TestGetOrCreateIsStableAcrossCalls(t *testing.T) {
	svc, repo := newTestService()

	first, err := svc.GetOrCreate(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	second, err := svc.GetOrCreate(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected stable conversation id, got %s then %s", first.ID, second.ID)
	}
	if len(repo.conversations) != 1 {
		t.Errorf("expected 1 conversation, got %d", len(repo.conversations))
	}
}

func TestPostMessageRequiresMembership(t *testing.T) {
	svc, repo := newTestService()
	repo.conversations = append(repo.conversations, &domain.Conversation{
		ID:        "c1",
		Members:   []string{"alice", "bob"},
		CreatedAt: time.Now(),
	})

	if _, err := svc.PostMessage(context.Background(), "c1", "mallory", "hi"); !errors.Is(err, commonerrors.ErrNotConversationMember) {
		t.Fatalf("expected ErrNotConversationMember, got %v", err)
	}

	msg, err := svc.PostMessage(context.Background(), "c1", "alice", "hi bob")
	if err != nil {
		t.Fatalf("member PostMessage returned error: %v", err)
	}
	if msg.Text != "hi bob" || msg.SenderID != "alice" {
		t.Errorf("unexpected stored message: %+v", msg)
	}
}

func TestPostMessageRejectsEmptyText(t *testing.T) {
	svc, repo := newTestService()
	repo.conversations = append(repo.conversations, &domain.Conversation{
		ID:      "c1",
		Members: []string{"alice", "bob"},
	})

	if _, err := svc.PostMessage(context.Background(), "c1", "alice", "  "); !errors.Is(err, commonerrors.ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
}

func TestGetMessagesUnknownConversation(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.GetMessages(context.Background(), "missing"); !errors.Is(err, commonerrors.ErrConversationNotFound) {
		t.Errorf("expected ErrConversationNotFound, got %v", err)
	}
}
