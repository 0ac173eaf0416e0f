package domain

import "time"

// Comment lives embedded in the post record, newest first.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is the timeline aggregate. Likes is a user-id set; Comments is the
// embedded comment list ordered newest first.
type Post struct {
	ID        string          `json:"id"`
	AuthorID  string          `json:"authorId"`
	Content   string          `json:"content"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Likes     map[string]bool `json:"likes"`
	Comments  []Comment       `json:"comments"`
	IsDeleted bool            `json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (p *Post) LikedBy(userID string) bool {
	return p.Likes[userID]
}

// HydratedComment carries the comment author's public projection.
type HydratedComment struct {
	Comment
	AuthorUsername string `json:"authorUsername"`
	AuthorPicture  string `json:"authorPicture,omitempty"`
}

// HydratedPost is the response shape: the post plus author and comment-author
// projections.
type HydratedPost struct {
	ID             string            `json:"id"`
	AuthorID       string            `json:"authorId"`
	AuthorUsername string            `json:"authorUsername"`
	AuthorPicture  string            `json:"authorPicture,omitempty"`
	Content        string            `json:"content"`
	ImageURL       string            `json:"imageUrl,omitempty"`
	Likes          map[string]bool   `json:"likes"`
	Comments       []HydratedComment `json:"comments"`
	CreatedAt      time.Time         `json:"createdAt"`
}
