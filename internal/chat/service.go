// Package chat keeps conversations for an authenticated user and relays them to the model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/store"
)

// maxTitleRunes bounds titles derived from the first user message.
const maxTitleRunes = 50

// Service manages conversations and their messages.
type Service struct {
	store store.ConversationStore
}

// NewService creates a Service.
func NewService(s store.ConversationStore) *Service {
	return &Service{store: s}
}

// GetOrCreateConversation returns the conversation with id when it exists and belongs to
// userID. Otherwise it starts a new conversation in mode.
func (s *Service) GetOrCreateConversation(ctx context.Context, userID, id string, mode domain.Mode) (domain.Conversation, error) {
	if !mode.Valid() {
		return domain.Conversation{}, fmt.Errorf("unknown chat mode %q", mode)
	}
	if id != "" {
		c, err := s.store.GetConversation(ctx, id, userID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Conversation{}, fmt.Errorf("loading conversation: %w", err)
		}
	}
	c, err := s.store.CreateConversation(ctx, userID, mode, domain.DefaultConversationTitle)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("creating conversation: %w", err)
	}
	return c, nil
}

// AddMessage appends a message to the conversation.
func (s *Service) AddMessage(ctx context.Context, conversationID string, role domain.Role, content string) (domain.Message, error) {
	m, err := s.store.AddMessage(ctx, conversationID, role, content)
	if err != nil {
		return domain.Message{}, fmt.Errorf("saving %s message: %w", role, err)
	}
	return m, nil
}

// Messages lists the conversation's messages, oldest first.
func (s *Service) Messages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

// NameFromFirstMessage retitles a conversation that still has the default title.
func (s *Service) NameFromFirstMessage(ctx context.Context, c *domain.Conversation, firstMessage string) error {
	if c.Title != domain.DefaultConversationTitle {
		return nil
	}
	title := TitleFrom(firstMessage)
	if title == "" {
		return nil
	}
	if err := s.store.UpdateConversationTitle(ctx, c.ID, title); err != nil {
		return fmt.Errorf("updating conversation title: %w", err)
	}
	c.Title = title
	return nil
}

// TitleFrom derives a conversation title from a message: its first line, whitespace
// collapsed, cut to 50 runes.
func TitleFrom(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	title := strings.Join(strings.Fields(line), " ")
	if utf8.RuneCountInString(title) <= maxTitleRunes {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:maxTitleRunes])) + "..."
}
