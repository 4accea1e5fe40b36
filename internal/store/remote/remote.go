// Package remote resolves the stored access token to a user by asking the authorization
// server for the current session.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

const (
	defaultSessionPath = "/api/auth/get-session"
	defaultTimeout     = 15 * time.Second
)

// SessionLookup calls the server's get-session endpoint with the token as a bearer
// credential.
type SessionLookup struct {
	baseURL string
	path    string
	timeout time.Duration
	base    *http.Client
	log     *zap.SugaredLogger
}

// Option configures a SessionLookup.
type Option func(*SessionLookup)

// WithHTTPClient sets the underlying transport client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SessionLookup) { s.base = c }
}

// WithTimeout bounds each lookup request.
func WithTimeout(d time.Duration) Option {
	return func(s *SessionLookup) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *SessionLookup) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a SessionLookup against baseURL.
func New(baseURL string, opts ...Option) *SessionLookup {
	s := &SessionLookup{
		baseURL: baseURL,
		path:    defaultSessionPath,
		timeout: defaultTimeout,
		base:    http.DefaultClient,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sessionResponse struct {
	Session *struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		ExpiresAt time.Time `json:"expiresAt"`
	} `json:"session"`
	User *domain.User `json:"user"`
}

// FindUserByToken looks up the session of a bare bearer access token.
func (s *SessionLookup) FindUserByToken(ctx context.Context, accessToken string) (domain.User, error) {
	return s.FindUser(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

// FindUser asks the server for the session tok belongs to. The token is attached by an
// oauth2 transport; it is never refreshed here.
func (s *SessionLookup) FindUser(ctx context.Context, tok *oauth2.Token) (domain.User, error) {
	endpoint, err := url.JoinPath(s.baseURL, s.path)
	if err != nil {
		return domain.User{}, fmt.Errorf("building session URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("creating session request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("requesting session: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.User{}, domain.ErrSessionNotFound
	case resp.StatusCode >= 400:
		return domain.User{}, fmt.Errorf("session endpoint returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.User{}, fmt.Errorf("reading session response: %w", err)
	}
	var payload *sessionResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.User{}, fmt.Errorf("decoding session response: %w", err)
	}
	if payload == nil || payload.Session == nil || payload.User == nil || payload.User.ID == "" {
		s.log.Debugw("no session for token", "status", resp.StatusCode)
		return domain.User{}, domain.ErrSessionNotFound
	}
	return *payload.User, nil
}
