package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yumeai/yume/internal/clock"
	"github.com/yumeai/yume/internal/memory"
)

// weekdayIndex maps lowercase weekday names to time.Weekday values.
var weekdayIndex = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Resolver computes deterministic next-run candidates from stored reminder
// memories, without AI involvement.
type Resolver struct {
	clock        *clock.Clock
	minLead      time.Duration
	nearbyWindow time.Duration
}

// NewResolver creates a Resolver. Pass zero durations to use the defaults
// (15 minutes each).
func NewResolver(c *clock.Clock, minLead, nearbyWindow time.Duration) *Resolver {
	if minLead <= 0 {
		minLead = DefaultMinLead
	}
	if nearbyWindow <= 0 {
		nearbyWindow = DefaultNearbyWindow
	}
	return &Resolver{clock: c, minLead: minLead, nearbyWindow: nearbyWindow}
}

// candidate is one qualifying reminder occurrence, never persisted.
type candidate struct {
	occursAt time.Time
	desc     string
	memoryID string
	content  string
}

// Deterministic scans the reminder memories and returns the closest upcoming
// run, merging reminders that fire within the nearby window. The boolean is
// false when no reminder qualifies; that is an expected outcome, not an error.
func (r *Resolver) Deterministic(entries map[string]memory.Entry, now time.Time) (NextRun, bool) {
	minFuture := now.Add(r.minLead)

	var candidates []candidate
	for id, e := range entries {
		if !e.HasSchedule() {
			continue
		}
		ro := e.ReminderOptions

		// One-time reminder with an explicit datetime.
		if ro.DatetimeValue != nil {
			occursAt := r.clock.ToUserTZ(*ro.DatetimeValue)
			if !occursAt.Before(minFuture) {
				candidates = append(candidates, newCandidate(occursAt, id, e.Content))
			}
			continue
		}

		hour, minute, err := clock.ParseClockTime(ro.TimeValue)
		if err != nil {
			continue // malformed time string, skip silently
		}

		if len(ro.DaysOfWeek) > 0 {
			for _, day := range ro.DaysOfWeek {
				wd, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(day))]
				if !ok {
					continue // unrecognized weekday name, skip silently
				}
				daysAhead := (int(wd) - int(now.Weekday()) + 7) % 7
				occursAt := r.clock.At(now.AddDate(0, 0, daysAhead), hour, minute)
				if occursAt.Before(minFuture) {
					// This week's occurrence already passed; next week.
					occursAt = occursAt.AddDate(0, 0, 7)
				}
				if !occursAt.Before(minFuture) {
					candidates = append(candidates, newCandidate(occursAt, id, e.Content))
				}
			}
			continue
		}

		// Daily: today at the given time, or tomorrow if already passed.
		occursAt := r.clock.At(now, hour, minute)
		if occursAt.Before(minFuture) {
			occursAt = occursAt.AddDate(0, 0, 1)
		}
		if !occursAt.Before(minFuture) {
			candidates = append(candidates, newCandidate(occursAt, id, e.Content))
		}
	}

	if len(candidates) == 0 {
		return NextRun{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].occursAt.Equal(candidates[j].occursAt) {
			return candidates[i].occursAt.Before(candidates[j].occursAt)
		}
		return candidates[i].memoryID < candidates[j].memoryID
	})

	chosen := candidates[0]

	// Gather reminders that fire at essentially the same time.
	var nearby []candidate
	for _, c := range candidates {
		if absDuration(c.occursAt.Sub(chosen.occursAt)) <= r.nearbyWindow {
			nearby = append(nearby, c)
		}
	}

	if len(nearby) > 1 {
		parts := make([]string, 0, len(nearby))
		topics := make([]string, 0, len(nearby))
		for _, c := range nearby {
			parts = append(parts, fmt.Sprintf("%s at %s", c.desc, c.occursAt.Format("2006-01-02 15:04")))
			topics = append(topics, c.content)
		}
		return NextRun{
			NextRunTime: chosen.occursAt,
			Reason: fmt.Sprintf("%s%s (includes nearby reminders: %s)",
				deterministicPrefix, parts[0], strings.Join(parts[1:], ", ")),
			Topic: strings.Join(topics, "; "),
		}, true
	}

	return NextRun{
		NextRunTime: chosen.occursAt,
		Reason:      deterministicPrefix + chosen.desc,
		Topic:       chosen.content,
	}, true
}

func newCandidate(occursAt time.Time, memoryID, content string) candidate {
	return candidate{
		occursAt: occursAt,
		desc:     fmt.Sprintf("Reminder %s: %s", memoryID, content),
		memoryID: memoryID,
		content:  content,
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
