package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/store/remote"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tokenstore"
)

func TestFindUserByToken_SendsBearerAndDecodesUser(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/api/auth/get-session" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session":{"id":"s1","userId":"u1","expiresAt":"2030-01-01T00:00:00Z"},"user":{"id":"u1","name":"Ada","email":"ada@example.com"}}`))
	}))
	defer server.Close()

	u, err := remote.New(server.URL).FindUserByToken(context.Background(), "tok-123")

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}, u)
}

func TestFindUser_UsesStoredCredential(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session":{"id":"s1","userId":"u1"},"user":{"id":"u1","name":"Ada"}}`))
	}))
	defer server.Close()

	stored := &tokenstore.StoredToken{AccessToken: "stored-1", TokenType: "bearer"}
	u, err := remote.New(server.URL).FindUser(context.Background(), stored.OAuth2())

	require.NoError(t, err)
	assert.Equal(t, "Bearer stored-1", gotAuth)
	assert.Equal(t, "u1", u.ID)
}

func TestFindUserByToken_NullSessionIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	_, err := remote.New(server.URL).FindUserByToken(context.Background(), "tok")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestFindUserByToken_UnauthorizedIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := remote.New(server.URL).FindUserByToken(context.Background(), "tok")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestFindUserByToken_ServerErrorIsNotReauth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := remote.New(server.URL).FindUserByToken(context.Background(), "tok")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
