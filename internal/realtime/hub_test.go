package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/glimmer-social/backend/internal/common/logger"
	msgdomain "github.com/glimmer-social/backend/internal/messaging/domain"
)

type mockMessenger struct {
	conversations map[string]*msgdomain.Conversation
	stored        []*msgdomain.Message
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{conversations: map[string]*msgdomain.Conversation{}}
}

func (m *mockMessenger) GetOrCreate(ctx context.Context, a, b string) (*msgdomain.Conversation, error) {
	key := a + "|" + b
	if b < a {
		key = b + "|" + a
	}
	if c, ok := m.conversations[key]; ok {
		return c, nil
	}
	c := &msgdomain.Conversation{ID: "conv-" + key, Members: []string{a, b}, CreatedAt: time.Now()}
	m.conversations[key] = c
	return c, nil
}

func (m *mockMessenger) PostMessage(ctx context.Context, conversationID, senderID, text string) (*msgdomain.Message, error) {
	msg := &msgdomain.Message{
		ID:             "msg",
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	m.stored = append(m.stored, msg)
	return msg, nil
}

func newTestHub() (*Hub, *mockMessenger) {
	messenger := newMockMessenger()
	log, _ := logger.New("", "test", "error")
	return NewHub(NewRegistry(), messenger, log), messenger
}

func (h *Hub) addTestClient(connID string) *Client {
	c := &Client{connID: connID, send: make(chan []byte, 8)}
	h.clients[connID] = c
	return c
}

func TestSendMessageDeliversToOnlineReceiver(t *testing.T) {
	hub, messenger := newTestHub()
	receiver := hub.addTestClient("conn-bob")
	hub.registry.Register("bob", "conn-bob")

	hub.handleSendMessage(context.Background(), &Event{
		Type:       EventSendMessage,
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "hi",
	})

	if len(messenger.stored) != 1 {
		t.Fatalf("expected message stored, got %d", len(messenger.stored))
	}

	select {
	case raw := <-receiver.send:
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("delivered payload does not parse: %v", err)
		}
		if event.Type != EventGetMessage || event.SenderID != "alice" || event.Text != "hi" {
			t.Errorf("unexpected delivered event: %+v", event)
		}
	default:
		t.Fatal("expected a delivered event in the receiver's send buffer")
	}
}

func TestSendMessageToOfflineReceiverStillStores(t *testing.T) {
	hub, messenger := newTestHub()

	hub.handleSendMessage(context.Background(), &Event{
		Type:       EventSendMessage,
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "hi",
	})

	if len(messenger.stored) != 1 {
		t.Errorf("offline receiver must not prevent storage, stored %d", len(messenger.stored))
	}
}

func TestLosingAddUserStillGetsPresenceSnapshot(t *testing.T) {
	hub, _ := newTestHub()
	hub.addTestClient("conn-1")
	hub.registry.Register("bob", "conn-1")
	loser := hub.addTestClient("conn-2")

	hub.handleAddUser(loser, &Event{Type: EventAddUser, UserID: "bob"})

	select {
	case raw := <-loser.send:
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("snapshot payload does not parse: %v", err)
		}
		if event.Type != EventGetUsers {
			t.Fatalf("expected %s, got %s", EventGetUsers, event.Type)
		}
		if len(event.Users) != 1 || event.Users[0].UserID != "bob" || event.Users[0].ConnID != "conn-1" {
			t.Errorf("unexpected presence snapshot: %+v", event.Users)
		}
	default:
		t.Fatal("expected the losing connection to receive the presence list")
	}

	if connID, _ := hub.registry.Lookup("bob"); connID != "conn-1" {
		t.Errorf("expected the first connection to keep the mapping, got %s", connID)
	}
}

func TestSecondTabDoesNotReceiveDirectMessages(t *testing.T) {
	hub, _ := newTestHub()
	first := hub.addTestClient("conn-1")
	second := hub.addTestClient("conn-2")
	hub.registry.Register("bob", "conn-1")
	hub.registry.Register("bob", "conn-2")

	hub.handleSendMessage(context.Background(), &Event{
		Type:       EventSendMessage,
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "hi",
	})

	if len(first.send) != 1 {
		t.Errorf("expected delivery to the first connection, got %d events", len(first.send))
	}
	if len(second.send) != 0 {
		t.Errorf("expected no delivery to the losing connection, got %d events", len(second.send))
	}
}
