package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "quiet", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", mode, err)
		}
		l.Debug("logger ready", "mode", mode)
	}
}

func TestLogger_RedactsNotes(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("subject_id", "42").Info("mood recorded", "mood", "sad", "note", "could not sleep")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["note"] != "[REDACTED]" {
		t.Errorf("Expected note to be redacted, got %v", fields["note"])
	}
	if fields["mood"] != "sad" || fields["subject_id"] != "42" {
		t.Errorf("Expected other fields to pass through, got %v", fields)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("discarded", "note", "x")
}
