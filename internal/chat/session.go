package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/ai"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

// Generator produces a streamed model response for a conversation history.
type Generator interface {
	Stream(ctx context.Context, history []domain.Message, tools ai.ToolSet, onChunk func(string)) (ai.Result, error)
}

// Session is one interactive chat: a conversation, its tools and the model.
// The tool set is fixed when the session starts.
type Session struct {
	service      *Service
	gen          Generator
	conversation domain.Conversation
	tools        ai.ToolSet
	log          *zap.SugaredLogger
}

// NewSession creates a Session for an already loaded conversation.
func NewSession(service *Service, gen Generator, conversation domain.Conversation, tools ai.ToolSet, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{service: service, gen: gen, conversation: conversation, tools: tools, log: log}
}

// Conversation returns the current conversation metadata.
func (s *Session) Conversation() domain.Conversation {
	return s.conversation
}

// Tools returns the session's tool set.
func (s *Session) Tools() ai.ToolSet {
	return s.tools
}

// Send stores the user's message, streams the model's reply through onChunk and stores the
// complete reply. A failed generation leaves the user message stored without a reply.
func (s *Session) Send(ctx context.Context, text string, onChunk func(string)) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("message is empty")
	}

	history, err := s.service.Messages(ctx, s.conversation.ID)
	if err != nil {
		return "", err
	}
	isFirst := !hasUserMessage(history)

	userMsg, err := s.service.AddMessage(ctx, s.conversation.ID, domain.RoleUser, text)
	if err != nil {
		return "", err
	}
	history = append(history, userMsg)

	if isFirst {
		if err := s.service.NameFromFirstMessage(ctx, &s.conversation, text); err != nil {
			s.log.Warnw("could not title conversation", "conversation", s.conversation.ID, "error", err)
		}
	}

	res, err := s.gen.Stream(ctx, history, s.tools, onChunk)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}
	if _, err := s.service.AddMessage(ctx, s.conversation.ID, domain.RoleAssistant, res.Content); err != nil {
		return res.Content, err
	}
	return res.Content, nil
}

func hasUserMessage(msgs []domain.Message) bool {
	for _, m := range msgs {
		if m.Role == domain.RoleUser {
			return true
		}
	}
	return false
}
