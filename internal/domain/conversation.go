package domain

import "time"

// Mode selects how a conversation is driven.
type Mode string

const (
	ModeChat  Mode = "chat"
	ModeTool  Mode = "tool"
	ModeAgent Mode = "agent"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeChat, ModeTool, ModeAgent:
		return true
	}
	return false
}

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DefaultConversationTitle is used until the first user message names the conversation.
const DefaultConversationTitle = "New Conversation"

// Conversation is a chat thread owned by a user.
type Conversation struct {
	ID        string
	UserID    string
	Mode      Mode
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []Message
}

// Message is a single entry in a conversation.
type Message struct {
	ID             string
	ConversationID string
	Role           Role
	Content        string
	CreatedAt      time.Time
}
