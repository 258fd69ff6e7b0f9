package runlog

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested run log entry does not exist.
var ErrNotFound = errors.New("run not found")

// Status is the lifecycle state of a scheduler run.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusExecuting, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// RunLog is one scheduling decision's audit record, progressing
// scheduled -> executing -> {completed|failed}, or scheduled -> cancelled
// when superseded.
type RunLog struct {
	ID                  string            `json:"id"`
	ScheduledTime       time.Time         `json:"scheduled_time"`
	ActualExecutionTime *time.Time        `json:"actual_execution_time,omitempty"`
	Reason              string            `json:"reason"`
	Topic               string            `json:"topic,omitempty"`
	Details             string            `json:"details,omitempty"`
	Status              Status            `json:"status"`
	ErrorMessage        string            `json:"error_message,omitempty"`
	ExecutionDurationMs *int64            `json:"execution_duration_ms,omitempty"`
	AIResponse          string            `json:"ai_response,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// Stats aggregates run outcomes over a trailing window.
type Stats struct {
	PeriodDays     int     `json:"period_days"`
	TotalRuns      int     `json:"total_runs"`
	CompletedRuns  int     `json:"completed_runs"`
	FailedRuns     int     `json:"failed_runs"`
	ScheduledRuns  int     `json:"scheduled_runs"`
	SuccessRate    float64 `json:"success_rate"`
	AvgExecutionMs int64   `json:"average_execution_duration_ms"`
}
