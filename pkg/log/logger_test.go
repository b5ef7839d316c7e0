package log

import (
	"sync"
	"testing"
)

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
	logger.Log(Event{Summary: &ImportSummary{}})
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Log(Event{Level: LevelDebug, Message: "a"})
	r.Log(Event{Level: LevelWarning, Message: "b"})
	r.Log(Event{Level: LevelError, Message: "c"})

	events := r.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Message != "b" {
		t.Errorf("events out of order: %v", events)
	}
	if got := r.Count(LevelWarning); got != 2 {
		t.Errorf("Count(WARNING) = %d, want 2", got)
	}

	// Returned slice is a copy.
	events[0].Message = "changed"
	if r.Events()[0].Message != "a" {
		t.Error("Events() exposed internal storage")
	}

	r.Reset()
	if len(r.Events()) != 0 {
		t.Error("expected no events after Reset")
	}
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Log(Event{Level: LevelInfo})
			}
		}()
	}
	wg.Wait()
	if got := len(r.Events()); got != 500 {
		t.Errorf("expected 500 events, got %d", got)
	}
}

func TestMultiLogger(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := NewMultiLogger(a, nil, b)

	m.Log(Event{Message: "one"})
	m.Log(Event{Message: "two"})

	if len(a.Events()) != 2 || len(b.Events()) != 2 {
		t.Errorf("expected both loggers to receive 2 events, got %d and %d",
			len(a.Events()), len(b.Events()))
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	m := NewMultiLogger()
	m.Log(Event{Message: "nobody listens"})
}
