package tokenstore

import (
	"time"

	"golang.org/x/oauth2"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/auth"
)

// StoredToken is the persisted credential. Its JSON form is the on-disk record.
type StoredToken struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
	Scope        string     `json:"scope,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	// ServerURL is the authorization server that issued the token. Empty in records
	// written before it was tracked.
	ServerURL    string     `json:"server_url,omitempty"`
}

// Store is durable single-record credential storage.
type Store interface {
	// Load returns the stored token, or nil without error when none is stored.
	Load() (*StoredToken, error)
	// Save replaces the stored token with one built from resp, issued by serverURL.
	Save(resp auth.TokenResponse, serverURL string) (*StoredToken, error)
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}

// Expiry returns the expiry time, or the zero time when the server sent none.
func (t *StoredToken) Expiry() time.Time {
	if t == nil || t.ExpiresAt == nil {
		return time.Time{}
	}
	return *t.ExpiresAt
}

// OAuth2 converts the record into an oauth2.Token for use with an oauth2 HTTP client.
func (t *StoredToken) OAuth2() *oauth2.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    tokenType,
		Expiry:       t.Expiry(),
	}
}

// newStoredToken stamps resp with created_at and, when expires_in is set, expires_at.
// Timestamps are truncated to milliseconds so they survive the ISO-8601 round trip.
func newStoredToken(resp auth.TokenResponse, serverURL string, now time.Time) *StoredToken {
	created := now.UTC().Truncate(time.Millisecond)
	tok := &StoredToken{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		Scope:        resp.Scope,
		CreatedAt:    created,
		ServerURL:    serverURL,
	}
	if resp.ExpiresIn > 0 {
		expires := created.Add(time.Duration(resp.ExpiresIn) * time.Second)
		tok.ExpiresAt = &expires
	}
	return tok
}
