package realtime

import "time"

const (
	EventAddUser     = "addUser"
	EventSendMessage = "sendMessage"
	EventGetUsers    = "getUsers"
	EventGetMessage  = "getMessage"
)

// Event is the wire envelope for both directions of the realtime channel.
// The populated fields depend on Type.
type Event struct {
	Type           string    `json:"type"`
	UserID         string    `json:"userId,omitempty"`
	SenderID       string    `json:"senderId,omitempty"`
	ReceiverID     string    `json:"receiverId,omitempty"`
	Text           string    `json:"text,omitempty"`
	ConversationID string    `json:"conversationId,omitempty"`
	Users          []Entry   `json:"users,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}
