package scheduler

import (
	"fmt"
	"time"

	"github.com/yumeai/yume/internal/clock"
)

// ValidateSuggestion normalizes an AI-proposed run into the user timezone and
// enforces the minimum lead time. A run closer than now+minLead is pushed out
// to exactly now+minLead with the adjustment noted in the reason; the topic
// passes through unchanged either way.
func ValidateSuggestion(c *clock.Clock, s NextRun, now time.Time, minLead time.Duration) NextRun {
	if minLead <= 0 {
		minLead = DefaultMinLead
	}
	minFuture := now.Add(minLead)

	runTime := c.ToUserTZ(s.NextRunTime)
	if runTime.Before(minFuture) {
		return NextRun{
			NextRunTime: minFuture,
			Reason:      fmt.Sprintf("Adjusted from AI suggestion: %s (minimum 15min delay applied)", s.Reason),
			Topic:       s.Topic,
			Details:     s.Details,
		}
	}

	return NextRun{
		NextRunTime: runTime,
		Reason:      s.Reason,
		Topic:       s.Topic,
		Details:     s.Details,
	}
}
