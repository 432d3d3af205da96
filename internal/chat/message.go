// Package chat contains the conversation transcript types and the session
// controller that owns them.
package chat

import "github.com/google/uuid"

// Role identifies who authored a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one transcript entry. Text is mutable only for the
// assistant message currently being streamed; messages are never removed
// during a session.
type Message struct {
	ID   string
	Role Role
	Text string
}

// NewUserMessage creates a user message with a fresh ID
func NewUserMessage(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Text: text}
}

// NewAssistantMessage creates an assistant message with a fresh ID
func NewAssistantMessage(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Text: text}
}
