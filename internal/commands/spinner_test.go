package commands

import (
	"testing"
	"time"
)

func TestNewSpinner(t *testing.T) {
	s := newSpinner("Connecting")

	if s.message != "Connecting" {
		t.Errorf("Expected message 'Connecting', got %s", s.message)
	}
	if s.stop == nil {
		t.Error("stop channel should not be nil")
	}
	if s.done == nil {
		t.Error("done channel should not be nil")
	}
	if s.frame != 0 {
		t.Errorf("Expected frame 0, got %d", s.frame)
	}
}

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	s := newSpinner("Connecting")
	s.start()
	// Let it spin briefly
	time.Sleep(50 * time.Millisecond)
	s.stopWithSuccess("done")

	select {
	case <-s.done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Spinner did not stop within expected time")
	}
}

func TestSpinnerLifecycle_StopWithError(t *testing.T) {
	s := newSpinner("Connecting")
	s.start()
	time.Sleep(30 * time.Millisecond)
	s.stopWithError()

	select {
	case <-s.done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Spinner did not stop within expected time")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Connecting")
	s.start()
	// A second stop on the same spinner must not panic on a double close
	s.stopWithError()
	s.stopWithError()
}

func TestSpinnerRender(t *testing.T) {
	s := newSpinner("Test")

	// render prints to stderr; walk the frames and make sure nothing panics
	for i := 0; i < 10; i++ {
		s.frame = i
		s.render()
	}
}

func TestGradientColors(t *testing.T) {
	if len(gradientColors) == 0 {
		t.Fatal("gradientColors should not be empty")
	}

	for i, c := range gradientColors {
		if len(string(c)) != 7 || string(c)[0] != '#' {
			t.Errorf("gradientColors[%d] = %q, want #RRGGBB", i, string(c))
		}
	}
}
