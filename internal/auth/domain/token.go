package domain

import "time"

// StoredToken is a bcrypt-hashed single-use credential: the email OTP or the
// password-reset token. At most one exists per user and kind.
type StoredToken struct {
	UserID    string
	TokenHash string
	CreatedAt time.Time
}

// AuthResult is what every successful login path returns.
type AuthResult struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
}

// GoogleProfile is the subset of a verified Google id token the auth flow
// consumes.
type GoogleProfile struct {
	Email   string
	Name    string
	Picture string
}
