package memory

import "time"

// Kind classifies a memory entry.
type Kind string

const (
	KindReminder    Kind = "reminder"
	KindPreference  Kind = "user_preference"
	KindObservation Kind = "user_observation"
)

// ReminderOptions carries the scheduling fields of a reminder entry.
// A scheduling-relevant reminder has exactly one of DatetimeValue (one-time)
// or TimeValue (recurring) set; entries with neither are kept as plain notes
// and ignored by the resolver.
type ReminderOptions struct {
	DatetimeValue *time.Time `json:"datetime_value,omitempty"`
	TimeValue     string     `json:"time_value,omitempty"`   // "HH:MM" user-local
	DaysOfWeek    []string   `json:"days_of_week,omitempty"` // weekday names; empty = daily
}

// Entry is a single stored memory.
type Entry struct {
	ID              string           `json:"id"`
	Kind            Kind             `json:"type"`
	Content         string           `json:"content"`
	Place           string           `json:"place,omitempty"`
	ObservationDate *time.Time       `json:"observation_date,omitempty"` // observations only
	ReminderOptions *ReminderOptions `json:"reminder_options,omitempty"` // reminders only
	CreatedAt       time.Time        `json:"created_at"`
	ModifiedAt      time.Time        `json:"modified_at"`
}

// HasSchedule reports whether the entry carries usable scheduling data.
func (e *Entry) HasSchedule() bool {
	if e.Kind != KindReminder || e.ReminderOptions == nil {
		return false
	}
	return e.ReminderOptions.DatetimeValue != nil || e.ReminderOptions.TimeValue != ""
}
