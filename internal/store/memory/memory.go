// Package memory is an in-process Store used by tests and when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/store"
)

type Store struct {
	mu sync.Mutex

	users         map[string]domain.User
	sessions      map[string]domain.Session
	conversations map[string]domain.Conversation
	messages      map[string][]domain.Message

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:         make(map[string]domain.User),
		sessions:      make(map[string]domain.Session),
		conversations: make(map[string]domain.Conversation),
		messages:      make(map[string][]domain.Message),
		now:           time.Now,
	}
}

// AddUser seeds a user, assigning an ID when empty.
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = u
	return u
}

// AddSession seeds a session keyed by its token.
func (s *Store) AddSession(sess domain.Session) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	s.sessions[sess.Token] = sess
	return sess
}

func (s *Store) FindUserByToken(_ context.Context, accessToken string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[accessToken]
	if !ok || accessToken == "" {
		return domain.User{}, domain.ErrSessionNotFound
	}
	if !sess.ExpiresAt.IsZero() && !sess.ExpiresAt.After(s.now()) {
		return domain.User{}, domain.ErrSessionNotFound
	}
	u, ok := s.users[sess.UserID]
	if !ok {
		return domain.User{}, domain.ErrSessionNotFound
	}
	return u, nil
}

func (s *Store) CreateConversation(_ context.Context, userID string, mode domain.Mode, title string) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title == "" {
		title = domain.DefaultConversationTitle
	}
	now := s.now().UTC()
	c := domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Mode:      mode,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[c.ID] = c
	return c, nil
}

func (s *Store) GetConversation(_ context.Context, id, userID string) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok || c.UserID != userID {
		return domain.Conversation{}, domain.ErrNotFound
	}
	c.Messages = s.sortedMessages(id)
	return c, nil
}

func (s *Store) UpdateConversationTitle(_ context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Title = title
	c.UpdatedAt = s.now().UTC()
	s.conversations[id] = c
	return nil
}

func (s *Store) AddMessage(_ context.Context, conversationID string, role domain.Role, content string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return domain.Message{}, domain.ErrNotFound
	}
	now := s.now().UTC()
	m := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}
	s.messages[conversationID] = append(s.messages[conversationID], m)
	c.UpdatedAt = now
	s.conversations[conversationID] = c
	return m, nil
}

func (s *Store) ListMessages(_ context.Context, conversationID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedMessages(conversationID), nil
}

func (s *Store) Close() {}

// sortedMessages must be called with s.mu held.
func (s *Store) sortedMessages(conversationID string) []domain.Message {
	src := s.messages[conversationID]
	out := make([]domain.Message, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
