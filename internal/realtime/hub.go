package realtime

import (
	"context"
	"encoding/json"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/logger"
	msgdomain "github.com/glimmer-social/backend/internal/messaging/domain"
	"github.com/glimmer-social/backend/internal/observability/metrics"
)

// Messenger is the durable side of the realtime channel: every sendMessage is
// stored before any delivery attempt.
type Messenger interface {
	GetOrCreate(ctx context.Context, a, b string) (*msgdomain.Conversation, error)
	PostMessage(ctx context.Context, conversationID, senderID, text string) (*msgdomain.Message, error)
}

type inbound struct {
	client *Client
	event  *Event
}

// Hub owns all live connections and the presence registry. All state changes
// run on the single Run goroutine; clients only push into channels.
type Hub struct {
	clients    map[string]*Client
	registry   Registry
	messenger  Messenger
	register   chan *Client
	unregister chan *Client
	events     chan inbound
	log        *logger.Logger
}

func NewHub(registry Registry, messenger Messenger, log *logger.Logger) *Hub {
	return &Hub{
		clients:    map[string]*Client{},
		registry:   registry,
		messenger:  messenger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan inbound, 64),
		log:        log,
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) HandleEvent(client *Client, event *Event) {
	h.events <- inbound{client: client, event: event}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.clients[client.connID] = client
			metrics.WebSocketConnectionsActive.Inc()
			h.log.Infof("websocket connected conn_id=%s total=%d", client.connID, len(h.clients))

		case client := <-h.unregister:
			h.handleUnregister(client)

		case in := <-h.events:
			h.handleEvent(ctx, in.client, in.event)
		}
	}
}

func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.clients[client.connID]; !ok {
		return
	}
	delete(h.clients, client.connID)
	close(client.send)
	metrics.WebSocketConnectionsActive.Dec()
	metrics.WebSocketDisconnections.WithLabelValues("closed").Inc()

	if userID, removed := h.registry.Unregister(client.connID); removed {
		h.log.Infof("websocket user offline user_id=%s conn_id=%s", userID, client.connID)
		h.broadcastPresence()
	}
}

func (h *Hub) handleEvent(ctx context.Context, client *Client, event *Event) {
	metrics.WebSocketEventsTotal.WithLabelValues(event.Type).Inc()

	switch event.Type {
	case EventAddUser:
		h.handleAddUser(client, event)
	case EventSendMessage:
		h.handleSendMessage(ctx, event)
	default:
		h.log.Warnf("websocket unknown event type %q conn_id=%s", event.Type, client.connID)
	}
}

// handleAddUser claims the presence slot. A second connection for the same
// user stays open but gets no mapping; it still receives the current presence
// list, since every addUser is answered with getUsers.
func (h *Hub) handleAddUser(client *Client, event *Event) {
	if event.UserID == "" {
		h.log.Warnf("websocket addUser without userId conn_id=%s", client.connID)
		return
	}

	if !h.registry.Register(event.UserID, client.connID) {
		h.log.Warnf("websocket presence already claimed user_id=%s conn_id=%s", event.UserID, client.connID)
		h.deliver(client, &Event{Type: EventGetUsers, Users: h.registry.Snapshot()})
		return
	}

	h.log.Infof("websocket user online user_id=%s conn_id=%s", event.UserID, client.connID)
	h.broadcastPresence()
}

// handleSendMessage stores the message durably, then attempts realtime
// delivery. An offline receiver is a silent drop; the stored message is the
// source of truth either way.
func (h *Hub) handleSendMessage(ctx context.Context, event *Event) {
	if event.SenderID == "" || event.ReceiverID == "" {
		h.log.Warn("websocket sendMessage missing sender or receiver")
		return
	}

	conversation, err := h.messenger.GetOrCreate(ctx, event.SenderID, event.ReceiverID)
	if err != nil {
		h.log.Errorf("websocket failed to resolve conversation sender=%s receiver=%s: %v",
			event.SenderID, event.ReceiverID, err)
		metrics.RealtimeDeliveriesTotal.WithLabelValues("store_failed").Inc()
		return
	}

	message, err := h.messenger.PostMessage(ctx, conversation.ID, event.SenderID, event.Text)
	if err != nil {
		if de, ok := commonerrors.AsDomainError(err); ok && de.Category() == commonerrors.CategoryValidation {
			h.log.Warnf("websocket rejected message sender=%s: %v", event.SenderID, err)
		} else {
			h.log.Errorf("websocket failed to store message sender=%s: %v", event.SenderID, err)
		}
		metrics.RealtimeDeliveriesTotal.WithLabelValues("store_failed").Inc()
		return
	}

	connID, online := h.registry.Lookup(event.ReceiverID)
	if !online {
		metrics.RealtimeDeliveriesTotal.WithLabelValues("offline_dropped").Inc()
		return
	}
	target, ok := h.clients[connID]
	if !ok {
		metrics.RealtimeDeliveriesTotal.WithLabelValues("offline_dropped").Inc()
		return
	}

	h.deliver(target, &Event{
		Type:           EventGetMessage,
		SenderID:       message.SenderID,
		Text:           message.Text,
		ConversationID: message.ConversationID,
		CreatedAt:      message.CreatedAt,
	})
	metrics.RealtimeDeliveriesTotal.WithLabelValues("delivered").Inc()
}

// broadcastPresence pushes the full presence list to every connection, the
// same way connect and disconnect announce themselves to all clients.
func (h *Hub) broadcastPresence() {
	event := &Event{
		Type:  EventGetUsers,
		Users: h.registry.Snapshot(),
	}
	for _, client := range h.clients {
		h.deliver(client, event)
	}
}

func (h *Hub) deliver(client *Client, event *Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		h.log.Errorf("websocket failed to marshal %s event: %v", event.Type, err)
		return
	}
	select {
	case client.send <- raw:
	default:
		h.log.Warnf("websocket send buffer full conn_id=%s, dropping %s", client.connID, event.Type)
	}
}

func (h *Hub) shutdown() {
	for connID, client := range h.clients {
		close(client.send)
		delete(h.clients, connID)
		h.registry.Unregister(connID)
	}
	h.log.Info("websocket hub shutdown completed")
}
