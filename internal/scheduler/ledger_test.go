package scheduler

import (
	"fmt"
	"testing"
	"time"
)

func TestLedger_EvictsOldest(t *testing.T) {
	l := NewLedger(3)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		l.Append(base.Add(time.Duration(i)*time.Minute), fmt.Sprintf("topic-%d", i))
	}

	got := l.Recent(0)
	if len(got) != 3 {
		t.Fatalf("retained %d entries, want 3", len(got))
	}
	// Newest first.
	if got[0].Topic != "topic-4" || got[2].Topic != "topic-2" {
		t.Fatalf("order wrong: %v", got)
	}
}

func TestLedger_RecentLimit(t *testing.T) {
	l := NewLedger(0) // default size
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	l.Append(base, "a")
	l.Append(base.Add(time.Minute), "b")

	got := l.Recent(1)
	if len(got) != 1 || got[0].Topic != "b" {
		t.Fatalf("Recent(1): got %v", got)
	}
	if got := l.Recent(10); len(got) != 2 {
		t.Fatalf("Recent over length: got %d entries", len(got))
	}
}
