// Package store defines the persistence contracts shared by the user, session and
// conversation backends.
package store

import (
	"context"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

// SessionStore resolves access tokens to users.
type SessionStore interface {
	// FindUserByToken returns the user owning a live session whose token equals
	// accessToken exactly, or domain.ErrSessionNotFound.
	FindUserByToken(ctx context.Context, accessToken string) (domain.User, error)
}

// ConversationStore persists chat conversations and their messages.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID string, mode domain.Mode, title string) (domain.Conversation, error)
	// GetConversation returns the conversation with its messages in creation order.
	// A conversation owned by another user is reported as domain.ErrNotFound.
	GetConversation(ctx context.Context, id, userID string) (domain.Conversation, error)
	UpdateConversationTitle(ctx context.Context, id, title string) error
	AddMessage(ctx context.Context, conversationID string, role domain.Role, content string) (domain.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
}

// Store is a complete persistence backend.
type Store interface {
	SessionStore
	ConversationStore
	Close()
}
