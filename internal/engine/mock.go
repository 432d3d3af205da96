package engine

import (
	"context"
	"strings"
	"time"
)

// MockEngine is a scripted Engine implementation for tests and demo mode
type MockEngine struct {
	// Mock behavior
	Script []Event       // replayed verbatim when non-nil
	Reply  string        // split into word batches when Script is nil
	Err    error         // emitted instead of a reply when Script is nil
	Delay  time.Duration // pause before each event

	// Call counters/recorders
	GenerateCalled int
	LastRequest    Request
}

// Ensure MockEngine implements Engine
var _ Engine = (*MockEngine)(nil)

// Generate replays the scripted events on a fresh channel
func (m *MockEngine) Generate(ctx context.Context, req Request) <-chan Event {
	m.GenerateCalled++
	m.LastRequest = req

	events := make(chan Event)
	script := m.script()

	go func() {
		defer close(events)
		for _, ev := range script {
			if m.Delay > 0 {
				select {
				case <-time.After(m.Delay):
				case <-ctx.Done():
					emit(ctx, events, ErrorEvent(ctx.Err()))
					return
				}
			}
			if !emit(ctx, events, ev) {
				return
			}
		}
	}()

	return events
}

func (m *MockEngine) script() []Event {
	if m.Script != nil {
		return m.Script
	}
	if m.Err != nil {
		return []Event{ErrorEvent(m.Err)}
	}

	var script []Event
	words := strings.SplitAfter(m.Reply, " ")
	for _, w := range words {
		if w == "" {
			continue
		}
		script = append(script, TokensEvent(w))
	}
	script = append(script, DoneEvent())
	return script
}
