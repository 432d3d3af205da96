package engine

import "time"

// EventKind discriminates the variants of Event
type EventKind int

const (
	// EventTokens carries a batch of freshly decoded output fragments
	EventTokens EventKind = iota
	// EventStats carries the throughput summary for the request
	EventStats
	// EventDone marks successful completion
	EventDone
	// EventError marks failure; the request produces nothing further
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventTokens:
		return "tokens"
	case EventStats:
		return "stats"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one notification on a request's stream. Exactly one field besides
// Kind is meaningful, selected by Kind.
type Event struct {
	Kind   EventKind
	Tokens []string
	Stats  Stats
	Err    error
}

// Terminal reports whether no further events follow this one
func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError
}

// Stats summarizes the throughput of a completed generation
type Stats struct {
	PromptTokens       int
	OutputTokens       int
	PromptTokensPerSec float64
	TokensPerSec       float64
	TotalDuration      time.Duration
}

// TokensEvent builds an EventTokens event
func TokensEvent(fragments ...string) Event {
	return Event{Kind: EventTokens, Tokens: fragments}
}

// StatsEvent builds an EventStats event
func StatsEvent(s Stats) Event {
	return Event{Kind: EventStats, Stats: s}
}

// DoneEvent builds an EventDone event
func DoneEvent() Event {
	return Event{Kind: EventDone}
}

// ErrorEvent builds an EventError event
func ErrorEvent(err error) Event {
	return Event{Kind: EventError, Err: err}
}
