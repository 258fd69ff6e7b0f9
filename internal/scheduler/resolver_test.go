package scheduler

import (
	"strings"
	"testing"
	"time"

	"github.com/yumeai/yume/internal/clock"
	"github.com/yumeai/yume/internal/memory"
)

// Monday morning in the user zone, the base instant for resolver tests.
func testClock(t *testing.T) (*clock.Clock, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)
	return clock.Fixed(now), now
}

func oneTimeReminder(id, content string, at time.Time) memory.Entry {
	return memory.Entry{
		ID:      id,
		Kind:    memory.KindReminder,
		Content: content,
		ReminderOptions: &memory.ReminderOptions{
			DatetimeValue: &at,
		},
	}
}

func recurringReminder(id, content, timeValue string, days ...string) memory.Entry {
	return memory.Entry{
		ID:      id,
		Kind:    memory.KindReminder,
		Content: content,
		ReminderOptions: &memory.ReminderOptions{
			TimeValue:  timeValue,
			DaysOfWeek: days,
		},
	}
}

func TestResolver_OneTimeFuture(t *testing.T) {
	c, now := testClock(t)
	r := NewResolver(c, 0, 0)

	at := now.Add(2 * time.Hour)
	entries := map[string]memory.Entry{
		"m1": oneTimeReminder("m1", "dentist appointment", at),
	}

	run, ok := r.Deterministic(entries, now)
	if !ok {
		t.Fatal("expected a deterministic run")
	}
	if !run.NextRunTime.Equal(at) {
		t.Fatalf("NextRunTime: got %v, want %v", run.NextRunTime, at)
	}
	if !run.IsDeterministic() {
		t.Fatalf("run not marked deterministic: %q", run.Reason)
	}
	if run.Topic != "dentist appointment" {
		t.Fatalf("Topic: got %q", run.Topic)
	}
}

func TestResolver_MinLeadBoundary(t *testing.T) {
	c, now := testClock(t)
	r := NewResolver(c, 0, 0)

	// 14 minutes out is too close; exactly 15 minutes qualifies.
	entries := map[string]memory.Entry{
		"m0": oneTimeReminder("m0", "too close", now.Add(14*time.Minute)),
	}
	if _, ok := r.Deterministic(entries, now); ok {
		t.Fatal("reminder inside the lead window should not qualify")
	}

	entries = map[string]memory.Entry{
		"m1": oneTimeReminder("m1", "on the boundary", now.Add(15*time.Minute)),
	}
	run, ok := r.Deterministic(entries, now)
	if !ok {
		t.Fatal("reminder exactly at now+lead should qualify")
	}
	if !run.NextRunTime.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("NextRunTime: got %v", run.NextRunTime)
	}
}

func TestResolver_WeeklyRollsToNextWeek(t *testing.T) {
	c, now := testClock(t) // Monday 09:00

	r := NewResolver(c, 0, 0)

	// Monday 09:05 is inside the lead window, so the occurrence rolls a
	// full week forward.
	entries := map[string]memory.Entry{
		"m1": recurringReminder("m1", "weekly standup", "09:05", "monday"),
	}
	run, ok := r.Deterministic(entries, now)
	if !ok {
		t.Fatal("expected a deterministic run")
	}
	want := c.At(now.AddDate(0, 0, 7), 9, 5)
	if !run.NextRunTime.Equal(want) {
		t.Fatalf("NextRunTime: got %v, want %v", run.NextRunTime, want)
	}
}

func TestResolver_WeeklyLaterThisWeek(t *testing.T) {
	c, now := testClock(t) // Monday

	r := NewResolver(c, 0, 0)

	entries := map[string]memory.Entry{
		"m1": recurringReminder("m1", "gym", "18:00", "Wednesday"),
	}
	run, ok := r.Deterministic(entries, now)
	if !ok {
		t.Fatal("expected a deterministic run")
	}
	want := c.At(now.AddDate(0, 0, 2), 18, 0)
	if !run.NextRunTime.Equal(want) {
		t.Fatalf("NextRunTime: got %v, want %v", run.NextRunTime, want)
	}
}

func TestResolver_DailyRollsToTomorrow(t *testing.T) {
	c, now := testClock(t)
	r := NewResolver(c, 0, 0)

	// 08:00 today already passed; expect tomorrow 08:00.
	entries := map[string]memory.Entry{
		"m1": recurringReminder("m1", "morning pills", "08:00"),
	}
	run, ok := r.Deterministic(entries, now)
	if !ok {
		t.Fatal("expected a deterministic run")
	}
	want := c.At(now.AddDate(0, 0, 1), 8, 0)
	if !run.NextRunTime.Equal(want) {
		t.Fatalf("NextRunTime: got %v, want %v", run.NextRunTime, want)
	}
}

func TestResolver_NearbyMerge(t *testing.T) {
	c, now := testClock(t)
	r := NewResolver(c, 0, 0)

	entries := map[string]memory.Entry{
		"a": oneTimeReminder("a", "call mom", now.Add(60*time.Minute)),
		"b": oneTimeReminder("b", "take out trash", now.Add(70*time.Minute)),
		// 90 minutes out is 30 past the chosen run, outside the window.
		"c": oneTimeReminder("c", "water plants", now.Add(90*time.Minute)),
	}

	run, ok := r.Deterministic(entries, now)
	if !ok {
		t.Fatal("expected a deterministic run")
	}
	if !run.NextRunTime.Equal(now.Add(60 * time.Minute)) {
		t.Fatalf("NextRunTime: got %v", run.NextRunTime)
	}
	if !strings.Contains(run.Reason, "includes nearby reminders") {
		t.Fatalf("Reason missing merge note: %q", run.Reason)
	}
	if run.Topic != "call mom; take out trash" {
		t.Fatalf("Topic: got %q", run.Topic)
	}
	if strings.Contains(run.Reason, "water plants") {
		t.Fatalf("distant reminder leaked into reason: %q", run.Reason)
	}
}

func TestResolver_SkipsMalformedAndNonReminders(t *testing.T) {
	c, now := testClock(t)
	r := NewResolver(c, 0, 0)

	entries := map[string]memory.Entry{
		"bad-time": recurringReminder("bad-time", "broken", "25:99"),
		"bad-day":  recurringReminder("bad-day", "broken day", "10:00", "someday"),
		"note": {
			ID:      "note",
			Kind:    memory.KindObservation,
			Content: "likes jazz",
		},
	}

	if _, ok := r.Deterministic(entries, now); ok {
		t.Fatal("no entry should qualify")
	}
}

func TestResolver_TieBreaksByMemoryID(t *testing.T) {
	c, now := testClock(t)
	r := NewResolver(c, 0, 0)

	at := now.Add(time.Hour)
	entries := map[string]memory.Entry{
		"b": oneTimeReminder("b", "second", at),
		"a": oneTimeReminder("a", "first", at),
	}

	run, ok := r.Deterministic(entries, now)
	if !ok {
		t.Fatal("expected a deterministic run")
	}
	if !strings.Contains(run.Reason, "Reminder a: first") {
		t.Fatalf("tie should pick the smaller memory ID, got %q", run.Reason)
	}
}
