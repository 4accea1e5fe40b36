// Package session decides whether the locally stored credential may be used and binds it
// to a user record before protected commands run.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/auth"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tokenstore"
)

// ExpiryBuffer is how long before expires_at a token is already treated as expired.
const ExpiryBuffer = 5 * time.Minute

var (
	// ErrNotAuthenticated means no credential is stored.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrSessionExpired means the stored credential is past (or within the buffer of) its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionRevoked means the credential is well formed but no session matches it.
	ErrSessionRevoked = errors.New("session is no longer valid")
	// ErrUnreadableToken means the stored credential exists but could not be read.
	ErrUnreadableToken = errors.New("stored credential is unreadable")
)

// State classifies the stored credential.
type State int

const (
	StateAbsent State = iota
	StateExpired
	StateValid
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "not logged in"
	case StateExpired:
		return "expired"
	case StateValid:
		return "valid"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is a snapshot of the stored credential.
type Status struct {
	State State
	Token *tokenstore.StoredToken
	// Remaining is the time left until expires_at. Negative once expired.
	Remaining time.Duration
}

// Guard is the single authority on whether the user is currently authenticated.
// It also owns writes to the token store so that a login and a logout in the same
// process never interleave.
type Guard struct {
	store  tokenstore.Store
	now    func() time.Time
	buffer time.Duration
	mu     sync.Mutex
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

// NewGuard creates a Guard over store.
func NewGuard(store tokenstore.Store, opts ...GuardOption) *Guard {
	g := &Guard{store: store, now: time.Now, buffer: ExpiryBuffer}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsExpired reports whether tok must not be used: it is nil, has no expires_at, or
// expires within the safety buffer. A token expiring exactly ExpiryBuffer from now is
// outside the buffer and still usable.
func (g *Guard) IsExpired(tok *tokenstore.StoredToken) bool {
	if tok == nil || tok.ExpiresAt == nil {
		return true
	}
	return tok.ExpiresAt.Sub(g.now()) < g.buffer
}

// Status loads the stored credential and classifies it. Only read failures are errors.
func (g *Guard) Status() (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	tok, err := g.store.Load()
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrUnreadableToken, err)
	}
	if tok == nil {
		return Status{State: StateAbsent}, nil
	}
	st := Status{State: StateValid, Token: tok}
	if tok.ExpiresAt != nil {
		st.Remaining = tok.ExpiresAt.Sub(g.now())
	}
	if g.IsExpired(tok) {
		st.State = StateExpired
	}
	return st, nil
}

// RequireAuth returns the stored credential if it is usable. Otherwise it returns a
// *ReauthRequiredError telling the user to log in again.
func (g *Guard) RequireAuth() (*tokenstore.StoredToken, error) {
	st, err := g.Status()
	if err != nil {
		return nil, &ReauthRequiredError{Reason: err}
	}
	switch st.State {
	case StateAbsent:
		return nil, &ReauthRequiredError{Reason: ErrNotAuthenticated}
	case StateExpired:
		return nil, &ReauthRequiredError{Reason: ErrSessionExpired}
	}
	return st.Token, nil
}

// Store persists a token freshly issued by serverURL, replacing any previous one.
func (g *Guard) Store(resp auth.TokenResponse, serverURL string) (*tokenstore.StoredToken, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Save(resp, serverURL)
}

// Clear removes the stored credential.
func (g *Guard) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Clear()
}
