package scheduler

import (
	"strings"
	"testing"
	"time"
)

func TestValidateSuggestion_ClampsToMinLead(t *testing.T) {
	c, now := testClock(t)

	s := NextRun{
		NextRunTime: now.Add(5 * time.Minute),
		Reason:      "check in about the meeting",
		Topic:       "meeting",
	}
	out := ValidateSuggestion(c, s, now, 0)

	if !out.NextRunTime.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("NextRunTime: got %v, want %v", out.NextRunTime, now.Add(15*time.Minute))
	}
	if !strings.HasPrefix(out.Reason, "Adjusted from AI suggestion: ") {
		t.Fatalf("Reason: got %q", out.Reason)
	}
	if !strings.Contains(out.Reason, "minimum 15min delay applied") {
		t.Fatalf("Reason missing adjustment note: %q", out.Reason)
	}
	if out.Topic != "meeting" {
		t.Fatalf("Topic must pass through, got %q", out.Topic)
	}
}

func TestValidateSuggestion_PassThrough(t *testing.T) {
	c, now := testClock(t)

	at := now.Add(3 * time.Hour)
	s := NextRun{NextRunTime: at, Reason: "afternoon walk", Topic: "walk"}
	out := ValidateSuggestion(c, s, now, 0)

	if !out.NextRunTime.Equal(at) {
		t.Fatalf("NextRunTime: got %v, want %v", out.NextRunTime, at)
	}
	if out.Reason != "afternoon walk" {
		t.Fatalf("Reason changed: %q", out.Reason)
	}
}

func TestValidateSuggestion_ReinterpretsWallClock(t *testing.T) {
	c, now := testClock(t)

	// Same wall-clock fields, but tagged UTC. The validated run keeps the
	// wall clock and adopts the user zone.
	at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	out := ValidateSuggestion(c, NextRun{NextRunTime: at, Reason: "r"}, now, 0)

	want := time.Date(2026, 3, 2, 14, 30, 0, 0, c.Location())
	if !out.NextRunTime.Equal(want) {
		t.Fatalf("NextRunTime: got %v, want %v", out.NextRunTime, want)
	}
}
