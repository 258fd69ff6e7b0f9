// Package suggest produces the AI-proposed side of the next-run decision.
// The engine treats it as an opaque call: any error makes the caller fall
// back to the fixed-offset schedule instead of leaving the system unscheduled.
package suggest

import (
	"context"
	"time"

	"github.com/yumeai/yume/internal/scheduler"
)

// Input is the context handed to the proposer.
type Input struct {
	Now               time.Time
	FormattedMemories string
	RecentExecuted    []scheduler.ExecutedReminder
	ExtraContext      string // optional calendar/day-plan text from collaborators
}

// Suggester proposes when the assistant should next reach out.
type Suggester interface {
	Suggest(ctx context.Context, in Input) (scheduler.NextRun, error)
}
