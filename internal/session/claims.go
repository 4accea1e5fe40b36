package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Identity is what can be read from an access token without contacting the server.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// PeekIdentity decodes a JWT access token without verifying it. Opaque tokens yield ok=false.
// The result is for display only and must never be used for authorization.
func PeekIdentity(accessToken string) (Identity, bool) {
	if accessToken == "" {
		return Identity{}, false
	}
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return Identity{}, false
	}

	var id Identity
	id.Subject, _ = claims["sub"].(string)
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	if id.Name == "" {
		id.Name, _ = claims["preferred_username"].(string)
	}
	if exp, ok := claims["exp"].(float64); ok {
		id.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return id, id.Subject != "" || id.Email != ""
}

// Label returns the most human-friendly identifier available.
func (i Identity) Label() string {
	switch {
	case i.Email != "":
		return i.Email
	case i.Name != "":
		return i.Name
	default:
		return i.Subject
	}
}
