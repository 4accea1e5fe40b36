package cli

import (
	"context"
	"errors"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/config"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/session"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/store/remote"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tokenstore"
)

var errNoDatabase = errors.New("database.session_lookup is \"database\" but no database URL is configured: set DATABASE_URL or database.url")

// deferredLookup picks and opens the session backend on first use, so that commands
// rejected by the session guard never touch the persistence layer. Server lookups go to
// the server that issued the token.
type deferredLookup struct {
	rt *runtimeState
}

func (l deferredLookup) LookupUser(ctx context.Context, tok *tokenstore.StoredToken) (domain.User, error) {
	rt := l.rt
	switch rt.cfg.Database.SessionLookupOrDefault() {
	case config.SessionLookupDatabase:
		if rt.cfg.Database.URL == "" {
			return domain.User{}, errNoDatabase
		}
		s, err := rt.openStore(ctx)
		if err != nil {
			return domain.User{}, err
		}
		return s.FindUserByToken(ctx, tok.AccessToken)
	default:
		serverURL := tok.ServerURL
		if serverURL == "" {
			serverURL = rt.cfg.Auth.ServerURL
		}
		rt.log.Debugw("looking up session", "server_url", serverURL)
		lookup := remote.New(serverURL,
			remote.WithTimeout(rt.cfg.Auth.HTTPTimeout()),
			remote.WithLogger(rt.log))
		return lookup.FindUser(ctx, tok.OAuth2())
	}
}

func (rt *runtimeState) authenticator() (*session.Authenticator, error) {
	guard, _, err := rt.guard()
	if err != nil {
		return nil, err
	}
	return session.NewAuthenticator(guard, deferredLookup{rt: rt}), nil
}
