// Package engine defines the generation engine contract and the Ollama-backed
// implementation of it.
package engine

import "context"

// Role identifies the author of a conversation turn on the wire
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message sent along with a generation request
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request describes one generation request. History carries the prior
// conversation turns in order; Prompt is the new user message and must not be
// duplicated inside History.
type Request struct {
	Prompt  string
	System  string
	History []Turn
}

// Engine produces a reply to a request as a stream of events.
//
// Generate never blocks: it starts the request on a background goroutine and
// returns a channel owned by that request. The channel carries zero or more
// EventTokens, at most one EventStats, then exactly one terminal event
// (EventDone or EventError), and is closed afterwards. Failures of any kind,
// including context cancellation, arrive as EventError on the same channel.
//
// Cancelling ctx aborts the request. If the receiver has already stopped
// draining the channel when ctx is cancelled, the channel may close without a
// terminal event; the goroutine never outlives the cancellation.
type Engine interface {
	Generate(ctx context.Context, req Request) <-chan Event
}
