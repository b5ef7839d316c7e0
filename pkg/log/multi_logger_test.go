package log

import "testing"

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := NewMultiLogger(a, nil, b)

	m.Log(Event{Level: LevelWarning, Message: "unknown key"})

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatalf("expected one event per logger, got %d and %d", len(a.Events()), len(b.Events()))
	}
}

func TestAtLeast(t *testing.T) {
	rec := NewRecorder()
	f := AtLeast(LevelWarning, rec)

	f.Log(Event{Level: LevelDebug, Message: "section skipped"})
	f.Log(Event{Level: LevelInfo, Category: CategorySummary, Summary: &ImportSummary{Entries: 3}})
	f.Log(Event{Level: LevelWarning, Message: "unknown key"})
	f.Log(Event{Level: LevelError, Message: "bad default"})

	events := rec.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Summary == nil {
		t.Error("summary event should pass the filter")
	}
	if events[2].Message != "bad default" {
		t.Errorf("last event = %q", events[2].Message)
	}
}
