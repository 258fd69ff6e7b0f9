package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatForAnalysis renders the stored memories plus the current time into the
// text block handed to the AI suggestion prompt.
func FormatForAnalysis(entries map[string]Entry, now time.Time) string {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "Current date and time: %s\n\n", now.Format("Monday, January 02, 2006 at 15:04"))
	b.WriteString("Stored memories:\n\n")

	for _, id := range ids {
		e := entries[id]
		fmt.Fprintf(&b, "ID: %s\n", id)
		fmt.Fprintf(&b, "Type: %s\n", e.Kind)
		fmt.Fprintf(&b, "Content: %s\n", e.Content)
		if e.Place != "" {
			fmt.Fprintf(&b, "Place: %s\n", e.Place)
		}
		if ro := e.ReminderOptions; ro != nil {
			if ro.DatetimeValue != nil {
				fmt.Fprintf(&b, "Due: %s\n", ro.DatetimeValue.Format("2006-01-02 15:04"))
			}
			if ro.TimeValue != "" {
				fmt.Fprintf(&b, "Recurring at: %s", ro.TimeValue)
				if len(ro.DaysOfWeek) > 0 {
					fmt.Fprintf(&b, " on %s", strings.Join(ro.DaysOfWeek, ", "))
				}
				b.WriteString("\n")
			}
		}
		fmt.Fprintf(&b, "Created: %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "Modified: %s\n", e.ModifiedAt.Format("2006-01-02 15:04:05"))
		b.WriteString(strings.Repeat("-", 50) + "\n")
	}

	return b.String()
}
