package domain

import "time"

// User is the account aggregate. Followers and Followings hold user ids and
// are mutated only through membership-checked repository updates.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Name         string
	Bio          string
	City         string
	From         string
	PictureURL   string
	CoverURL     string
	Followers    []string
	Followings   []string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public projection used for hydration: follower lists,
// suggestions, post and notification authors.
type Profile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name,omitempty"`
	PictureURL string `json:"profilePicture,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		PictureURL: u.PictureURL,
	}
}

// PublicView is the detail response for a single user. The password hash is
// never serialized.
type PublicView struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	City           string    `json:"city,omitempty"`
	From           string    `json:"from,omitempty"`
	PictureURL     string    `json:"profilePicture,omitempty"`
	CoverURL       string    `json:"coverPicture,omitempty"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	IsVerified     bool      `json:"isVerified"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (u *User) PublicView() PublicView {
	return PublicView{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Name:           u.Name,
		Bio:            u.Bio,
		City:           u.City,
		From:           u.From,
		PictureURL:     u.PictureURL,
		CoverURL:       u.CoverURL,
		FollowerCount:  len(u.Followers),
		FollowingCount: len(u.Followings),
		IsVerified:     u.IsVerified,
		CreatedAt:      u.CreatedAt,
	}
}
