package scheduler

import "time"

// Decision is the outcome of one arbitration pass. The losing candidate's
// reason is retained as metadata so the run log keeps both sides of the
// choice visible.
type Decision struct {
	Chosen   NextRun
	Metadata map[string]string
}

// Arbitrate merges the validated AI candidate and the deterministic candidate
// into one decision. Ties go to the deterministic side: it derives from
// explicit user-authored reminders, and those must never be missed.
func Arbitrate(ai, deterministic *NextRun, now time.Time) Decision {
	switch {
	case deterministic == nil && ai == nil:
		return Decision{Chosen: Fallback(FallbackAgentError, now, FallbackOffset)}

	case deterministic == nil:
		chosen := *ai
		if chosen.Topic == "" {
			chosen.Topic = chosen.Reason
		}
		return Decision{
			Chosen:   chosen,
			Metadata: map[string]string{"source": "ai"},
		}

	case ai == nil:
		return Decision{
			Chosen:   *deterministic,
			Metadata: map[string]string{"source": "deterministic"},
		}
	}

	deltaAI := ai.NextRunTime.Sub(now)
	deltaDet := deterministic.NextRunTime.Sub(now)

	if deltaDet <= deltaAI {
		return Decision{
			Chosen: *deterministic,
			Metadata: map[string]string{
				"source":    "deterministic",
				"ai_reason": ai.Reason,
			},
		}
	}

	chosen := *ai
	if chosen.Topic == "" {
		chosen.Topic = chosen.Reason
	}
	return Decision{
		Chosen: chosen,
		Metadata: map[string]string{
			"source":               "ai",
			"deterministic_reason": deterministic.Reason,
		},
	}
}
