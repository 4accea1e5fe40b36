package domain

import "time"

// User is the account record owned by the authorization server.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Session links a user to an access token. The CLI never creates sessions; it only
// finds them by presenting the token it holds.
type Session struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
}
