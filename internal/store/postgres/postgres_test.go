package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

// setupTestDB connects to DATABASE_URL and creates the tables used by the store in a
// throwaway schema. Tests are skipped when DATABASE_URL is not set.
func setupTestDB(t *testing.T) *Store {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL tests")
	}

	ctx := context.Background()
	s, err := NewStore(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.pool.Exec(ctx, `
		drop table if exists "message", "conversation", "session", "user" cascade;

		create table "user" (
			id text primary key,
			name text not null,
			email text not null unique,
			image text
		);
		create table "session" (
			id text primary key,
			token text not null unique,
			"userId" text not null references "user"(id) on delete cascade,
			"expiresAt" timestamptz not null
		);
		create table "conversation" (
			id text primary key,
			"userId" text not null references "user"(id) on delete cascade,
			mode text not null default 'chat',
			title text not null,
			"createdAt" timestamptz not null default now(),
			"updatedAt" timestamptz not null
		);
		create table "message" (
			id text primary key,
			"conversationId" text not null references "conversation"(id) on delete cascade,
			role text not null,
			content text not null,
			"createdAt" timestamptz not null default now()
		);
	`)
	require.NoError(t, err)
	return s
}

func seedUser(t *testing.T, s *Store, id, token string, expiresAt time.Time) {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `insert into "user" (id, name, email) values ($1, 'Ada', $1 || '@example.com')`, id)
	require.NoError(t, err)
	_, err = s.pool.Exec(ctx, `insert into "session" (id, token, "userId", "expiresAt") values ($1 || '-s', $2, $1, $3)`, id, token, expiresAt)
	require.NoError(t, err)
}

func TestFindUserByToken(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "live-token", time.Now().Add(time.Hour))
	seedUser(t, s, "u2", "old-token", time.Now().Add(-time.Hour))

	u, err := s.FindUserByToken(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "Ada", u.Name)

	_, err = s.FindUserByToken(ctx, "old-token")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.FindUserByToken(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestConversationRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "tok", time.Now().Add(time.Hour))

	c, err := s.CreateConversation(ctx, "u1", domain.ModeTool, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConversationTitle, c.Title)

	_, err = s.AddMessage(ctx, c.ID, domain.RoleUser, "first")
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, c.ID, domain.RoleAssistant, "second")
	require.NoError(t, err)
	require.NoError(t, s.UpdateConversationTitle(ctx, c.ID, "first"))

	got, err := s.GetConversation(ctx, c.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, domain.ModeTool, got.Mode)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "first", got.Messages[0].Content)

	_, err = s.GetConversation(ctx, c.ID, "someone-else")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, s.UpdateConversationTitle(ctx, "missing", "x"), domain.ErrNotFound)
}
