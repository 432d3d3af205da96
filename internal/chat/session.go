package chat

import (
	"context"
	"strings"

	"llamachat/internal/engine"
)

// Session owns one conversation: the ordered transcript, the in-flight state
// of the current generation, and the one-shot alert for surfaced errors.
//
// A Session is single-writer. Every method must be called from the same
// goroutine, the one running the UI event loop; engine goroutines never touch
// it and communicate only through the event channel returned by Send. That is
// what keeps the transcript lock-free.
type Session struct {
	engine engine.Engine
	system string

	messages   []Message
	generating bool
	tokens     []string
	stats      engine.Stats
	hasStats   bool
	alert      string
	lastErr    error
	cancel     context.CancelFunc
}

// NewSession creates a session on top of an engine. system is the optional
// system prompt sent with every request.
func NewSession(eng engine.Engine, system string) *Session {
	return &Session{engine: eng, system: system}
}

// Send starts a generation for prompt.
//
// A prompt that trims to empty, or a send while a generation is in flight,
// is rejected with (nil, false) and no state change. An accepted send appends
// the user message and an empty assistant placeholder to the transcript,
// marks the session generating, dispatches the request, and returns the
// request's event channel for the caller to pump into Apply.
func (s *Session) Send(prompt string) (<-chan engine.Event, bool) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" || s.generating {
		return nil, false
	}

	history := s.historyTurns()

	s.messages = append(s.messages, NewUserMessage(trimmed), NewAssistantMessage(""))
	s.tokens = nil
	s.alert = ""
	s.lastErr = nil
	s.hasStats = false
	s.generating = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	return s.engine.Generate(ctx, engine.Request{
		Prompt:  trimmed,
		System:  s.system,
		History: history,
	}), true
}

// Apply merges one engine event into the session state.
func (s *Session) Apply(ev engine.Event) {
	switch ev.Kind {
	case engine.EventTokens:
		s.tokens = append(s.tokens, ev.Tokens...)
		// The streamed reply so far is the join of every fragment received
		// for this request; it overwrites the placeholder wholesale.
		if n := len(s.messages); n > 0 && s.messages[n-1].Role == RoleAssistant {
			s.messages[n-1].Text = strings.Join(s.tokens, "")
		}
	case engine.EventStats:
		s.stats = ev.Stats
		s.hasStats = true
	case engine.EventDone:
		s.finish()
	case engine.EventError:
		s.finish()
		s.lastErr = ev.Err
		if ev.Err != nil {
			s.alert = ev.Err.Error()
		} else {
			s.alert = "generation failed"
		}
	}
}

// finish ends the in-flight request no matter how it terminated
func (s *Session) finish() {
	s.generating = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Cancel aborts the in-flight request, if any. State stays generating until
// the request's terminal event arrives through Apply.
func (s *Session) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Clear abandons the conversation and returns the session to its initial
// state. Callers should not clear while a generation is in flight.
func (s *Session) Clear() {
	s.Cancel()
	s.messages = nil
	s.tokens = nil
	s.generating = false
	s.alert = ""
	s.lastErr = nil
	s.hasStats = false
	s.stats = engine.Stats{}
}

// Messages returns a copy of the transcript in order
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of transcript messages
func (s *Session) Len() int {
	return len(s.messages)
}

// LastAssistantText returns the text of the most recent assistant message
func (s *Session) LastAssistantText() string {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant {
			return s.messages[i].Text
		}
	}
	return ""
}

// Generating reports whether a generation is in flight
func (s *Session) Generating() bool {
	return s.generating
}

// Stats returns the throughput summary of the last completed generation
func (s *Session) Stats() (engine.Stats, bool) {
	return s.stats, s.hasStats
}

// Alert returns the pending alert text without consuming it
func (s *Session) Alert() string {
	return s.alert
}

// TakeAlert consumes and returns the pending alert text. It returns "" when
// no alert is pending; each alert is surfaced at most once.
func (s *Session) TakeAlert() string {
	alert := s.alert
	s.alert = ""
	s.lastErr = nil
	return alert
}

// LastError returns the error behind the pending alert, nil when none is
// pending. Presentation layers use it to pick a recovery hint; the alert
// text itself stays the verbatim error message.
func (s *Session) LastError() error {
	return s.lastErr
}

// historyTurns converts the completed transcript into wire turns. Messages
// with no text, such as the placeholder of a failed generation, are skipped.
func (s *Session) historyTurns() []engine.Turn {
	if len(s.messages) == 0 {
		return nil
	}
	turns := make([]engine.Turn, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Text == "" {
			continue
		}
		turns = append(turns, engine.Turn{Role: engine.Role(m.Role), Content: m.Text})
	}
	return turns
}
