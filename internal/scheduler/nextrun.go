// Package scheduler implements the reminder scheduling core: the
// deterministic candidate resolver, AI-suggestion validation, arbitration
// between the two, and the timer engine that fires the chosen run.
package scheduler

import "time"

const (
	// DefaultMinLead is the minimum distance between now and any
	// schedulable run time.
	DefaultMinLead = 15 * time.Minute
	// DefaultNearbyWindow is the span within which close reminder
	// candidates are merged into one notification.
	DefaultNearbyWindow = 15 * time.Minute
	// DefaultDebounce is the deferred-trigger collapse window.
	DefaultDebounce = 60 * time.Second
	// FallbackOffset is how far out the engine schedules when no candidate
	// can be produced.
	FallbackOffset = time.Hour

	// deterministicPrefix marks a NextRun as derived from explicit reminder
	// data. Arbitration reads it for provenance, never for display logic.
	deterministicPrefix = "Deterministic reminder chosen: "

	// FallbackNoMemories is the reason used when the memory store is empty.
	FallbackNoMemories = "No memories found - scheduling hourly check"
	// FallbackAgentError is the reason used when the AI suggestion call fails.
	FallbackAgentError = "Agent error occurred - scheduling fallback reminder"
)

// NextRun is one scheduling decision: when the assistant should next reach
// out, and why. Exactly one NextRun is current at any time.
type NextRun struct {
	NextRunTime time.Time `json:"next_run_time"`
	Reason      string    `json:"reason"`
	Topic       string    `json:"topic,omitempty"`
	Details     string    `json:"details,omitempty"`
}

// IsDeterministic reports whether the run was produced by the resolver rather
// than the AI suggestion path.
func (r NextRun) IsDeterministic() bool {
	return len(r.Reason) >= len(deterministicPrefix) && r.Reason[:len(deterministicPrefix)] == deterministicPrefix
}

// ReminderJobParams is the typed payload carried through the reminder timer.
type ReminderJobParams struct {
	RunID   string
	Reason  string
	Topic   string
	Details string
}

// ExecutedReminder is one entry of the fired-reminder history.
type ExecutedReminder struct {
	ExecutedAt time.Time `json:"executed_at"`
	Topic      string    `json:"topic"`
}

// Fallback builds the fixed-offset NextRun used when neither the resolver nor
// the AI path produced a candidate.
func Fallback(reason string, now time.Time, offset time.Duration) NextRun {
	return NextRun{
		NextRunTime: now.Add(offset),
		Reason:      reason,
	}
}
