package memory

import (
	"strings"
	"testing"
	"time"
)

func TestFormatForAnalysis(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	due := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)

	entries := map[string]Entry{
		"b-reminder": {
			ID:      "b-reminder",
			Kind:    KindReminder,
			Content: "dentist",
			ReminderOptions: &ReminderOptions{
				DatetimeValue: &due,
			},
		},
		"a-recurring": {
			ID:      "a-recurring",
			Kind:    KindReminder,
			Content: "gym",
			Place:   "home",
			ReminderOptions: &ReminderOptions{
				TimeValue:  "18:00",
				DaysOfWeek: []string{"monday", "thursday"},
			},
		},
	}

	out := FormatForAnalysis(entries, now)

	if !strings.Contains(out, "Current date and time: Monday, March 02, 2026 at 09:30") {
		t.Fatalf("missing current time header:\n%s", out)
	}
	if !strings.Contains(out, "Due: 2026-03-05 14:00") {
		t.Fatalf("missing one-time due line:\n%s", out)
	}
	if !strings.Contains(out, "Recurring at: 18:00 on monday, thursday") {
		t.Fatalf("missing recurring line:\n%s", out)
	}
	// Entries render sorted by ID for a stable prompt.
	if strings.Index(out, "ID: a-recurring") > strings.Index(out, "ID: b-reminder") {
		t.Fatalf("entries not sorted by ID:\n%s", out)
	}
}
