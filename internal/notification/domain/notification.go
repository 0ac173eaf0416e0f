package domain

import "time"

type NotificationType string

const (
	TypeFollow  NotificationType = "follow"
	TypeLike    NotificationType = "like"
	TypeComment NotificationType = "comment"
)

// Notification is an append-only record. There is no read/unread state and no
// mutation after creation.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	RecipientID string           `json:"recipientId"`
	ActorID     string           `json:"actorId"`
	PostID      string           `json:"postId,omitempty"`
	Content     string           `json:"content"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// HydratedNotification joins in the actor profile and, when the notification
// references a post, the post's content and image.
type HydratedNotification struct {
	Notification
	ActorUsername string `json:"actorUsername"`
	ActorPicture  string `json:"actorPicture,omitempty"`
	PostContent   string `json:"postContent,omitempty"`
	PostImage     string `json:"postImage,omitempty"`
}
