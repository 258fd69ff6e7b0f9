package scheduler

import (
	"sync"
	"time"
)

// DefaultLedgerSize is the executed-reminder retention when none is configured.
const DefaultLedgerSize = 5

// Ledger is a bounded, append-only history of fired reminders. The engine's
// fire path is its sole writer; the AI suggestion prompt and the query API
// read it to avoid repeating a topic too soon.
type Ledger struct {
	mu      sync.Mutex
	entries []ExecutedReminder
	size    int
}

// NewLedger creates a Ledger retaining the last size entries.
// Pass size <= 0 to use the default (5).
func NewLedger(size int) *Ledger {
	if size <= 0 {
		size = DefaultLedgerSize
	}
	return &Ledger{size: size}
}

// Append records a fired reminder, evicting the oldest entry when full.
func (l *Ledger) Append(executedAt time.Time, topic string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, ExecutedReminder{ExecutedAt: executedAt, Topic: topic})
	if len(l.entries) > l.size {
		l.entries = l.entries[len(l.entries)-l.size:]
	}
}

// Recent returns up to n entries, newest first. Pass n <= 0 for all retained.
func (l *Ledger) Recent(n int) []ExecutedReminder {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]ExecutedReminder, 0, n)
	for i := len(l.entries) - 1; i >= len(l.entries)-n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}
