package db

import "time"

// User is a Spotify account that has signed in to the web app.
type User struct {
	ID          string
	DisplayName string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time // nullable
}

// Session is a signed-in browser session with the user's OAuth token.
// UserName is read from the users table and never written.
type Session struct {
	ID           string
	UserID       string
	UserName     string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
