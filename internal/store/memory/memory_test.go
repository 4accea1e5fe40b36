package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

func TestStore_FindUserByToken(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := s.AddUser(domain.User{Name: "Ada", Email: "ada@example.com"})
	require.NotEmpty(t, u.ID)
	s.AddSession(domain.Session{Token: "live", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)})
	s.AddSession(domain.Session{Token: "stale", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Hour)})
	s.AddSession(domain.Session{Token: "orphan", UserID: "missing"})

	got, err := s.FindUserByToken(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	for _, token := range []string{"stale", "orphan", "unknown", "LIVE", ""} {
		_, err := s.FindUserByToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "token %q", token)
	}
}

func TestStore_ConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	c, err := s.CreateConversation(ctx, "user-1", domain.ModeChat, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConversationTitle, c.Title)
	assert.Equal(t, domain.ModeChat, c.Mode)

	_, err = s.AddMessage(ctx, c.ID, domain.RoleUser, "hello")
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, c.ID, domain.RoleAssistant, "hi there")
	require.NoError(t, err)
	require.NoError(t, s.UpdateConversationTitle(ctx, c.ID, "hello"))

	got, err := s.GetConversation(ctx, c.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, domain.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "hi there", got.Messages[1].Content)

	_, err = s.GetConversation(ctx, c.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_MessagesAreOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	c, err := s.CreateConversation(ctx, "u", domain.ModeTool, "t")
	require.NoError(t, err)
	for _, content := range []string{"one", "two", "three"} {
		_, err := s.AddMessage(ctx, c.ID, domain.RoleUser, content)
		require.NoError(t, err)
	}

	msgs, err := s.ListMessages(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
}

func TestStore_AddMessageToUnknownConversation(t *testing.T) {
	_, err := NewStore().AddMessage(context.Background(), "nope", domain.RoleUser, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
