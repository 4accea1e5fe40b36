package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tokenstore"
)

// ReauthRequiredError is returned when the command cannot continue without a new login.
type ReauthRequiredError struct {
	Reason error
}

func (e *ReauthRequiredError) Error() string {
	return fmt.Sprintf("%v: run 'eclipse login' to authenticate", e.Reason)
}

func (e *ReauthRequiredError) Unwrap() error {
	return e.Reason
}

// IsReauthRequired reports whether err asks the user to log in again.
func IsReauthRequired(err error) bool {
	var re *ReauthRequiredError
	return errors.As(err, &re)
}

// SessionLookup resolves a stored credential to the user owning it. Implementations
// match the access token exactly and return domain.ErrSessionNotFound when no live
// session matches.
type SessionLookup interface {
	LookupUser(ctx context.Context, tok *tokenstore.StoredToken) (domain.User, error)
}

// Authenticator runs the guard and then binds the credential to a user record.
type Authenticator struct {
	guard  *Guard
	lookup SessionLookup
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(guard *Guard, lookup SessionLookup) *Authenticator {
	return &Authenticator{guard: guard, lookup: lookup}
}

// CurrentUser returns the user owning the stored credential. The lookup is never
// consulted when the guard rejects the credential.
func (a *Authenticator) CurrentUser(ctx context.Context) (domain.User, *tokenstore.StoredToken, error) {
	tok, err := a.guard.RequireAuth()
	if err != nil {
		return domain.User{}, nil, err
	}
	user, err := a.lookup.LookupUser(ctx, tok)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.User{}, nil, &ReauthRequiredError{Reason: ErrSessionRevoked}
		}
		return domain.User{}, nil, fmt.Errorf("looking up session: %w", err)
	}
	return user, tok, nil
}
