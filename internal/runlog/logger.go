package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yumeai/yume/internal/clock"
	"github.com/yumeai/yume/internal/pkg/logs"
)

const timeLayout = time.RFC3339Nano

// Logger persists the lifecycle of scheduler runs. It is the sole writer of
// scheduler_runs state transitions.
type Logger struct {
	store *Store
	clock *clock.Clock
}

// NewLogger creates a Logger on the given store.
func NewLogger(store *Store, c *clock.Clock) *Logger {
	return &Logger{store: store, clock: c}
}

// LogScheduled records a newly installed scheduling decision. All rows still
// in the scheduled state are cancelled first, in the same transaction, so at
// most one row is ever active.
func (l *Logger) LogScheduled(ctx context.Context, runID string, scheduledTime time.Time, reason, topic, details string, metadata map[string]string) error {
	now := l.clock.Now()

	metaJSON := "{}"
	if len(metadata) > 0 {
		raw, err := sonic.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = string(raw)
	}

	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE scheduler_runs SET status = ?, updated_at = ? WHERE status = ?`,
		StatusCancelled, now.Format(timeLayout), StatusScheduled)
	if err != nil {
		return fmt.Errorf("cancel previous scheduled runs: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logs.CtxInfo(ctx, "[runlog] cancelled %d previously scheduled runs", n)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scheduler_runs
		 (id, scheduled_time, reason, topic, details, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, scheduledTime.Format(timeLayout), reason, topic, details,
		StatusScheduled, metaJSON, now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert scheduled run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logs.CtxInfo(ctx, "[runlog] logged scheduled run %s: %s", runID, reason)
	return nil
}

// LogExecutionStart marks the run as executing and stamps the actual
// execution time. A missing row (already cancelled or expired) is a warned
// no-op, not an error.
func (l *Logger) LogExecutionStart(ctx context.Context, runID string) error {
	now := l.clock.Now()
	res, err := l.store.db.ExecContext(ctx,
		`UPDATE scheduler_runs
		 SET status = ?, actual_execution_time = ?, updated_at = ?
		 WHERE id = ?`,
		StatusExecuting, now.Format(timeLayout), now.Format(timeLayout), runID)
	if err != nil {
		return fmt.Errorf("mark executing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logs.CtxWarn(ctx, "[runlog] run %s not found in logs", runID)
	}
	return nil
}

// LogExecutionCompletion marks the run completed with its duration and the
// downstream response text.
func (l *Logger) LogExecutionCompletion(ctx context.Context, runID string, durationMs int64, aiResponse string) error {
	now := l.clock.Now()
	res, err := l.store.db.ExecContext(ctx,
		`UPDATE scheduler_runs
		 SET status = ?, execution_duration_ms = ?, ai_response = ?, updated_at = ?
		 WHERE id = ?`,
		StatusCompleted, durationMs, nullString(aiResponse), now.Format(timeLayout), runID)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logs.CtxWarn(ctx, "[runlog] run %s not found in logs", runID)
	}
	return nil
}

// LogExecutionFailure marks the run failed with the error text.
func (l *Logger) LogExecutionFailure(ctx context.Context, runID string, errorMessage string, durationMs int64) error {
	now := l.clock.Now()
	res, err := l.store.db.ExecContext(ctx,
		`UPDATE scheduler_runs
		 SET status = ?, error_message = ?, execution_duration_ms = ?, updated_at = ?
		 WHERE id = ?`,
		StatusFailed, errorMessage, durationMs, now.Format(timeLayout), runID)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logs.CtxWarn(ctx, "[runlog] run %s not found in logs", runID)
	}
	return nil
}

// LogCancelled marks a single run cancelled (bare disarm of the reminder slot).
func (l *Logger) LogCancelled(ctx context.Context, runID string) error {
	now := l.clock.Now()
	res, err := l.store.db.ExecContext(ctx,
		`UPDATE scheduler_runs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusCancelled, now.Format(timeLayout), runID, StatusScheduled)
	if err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logs.CtxWarn(ctx, "[runlog] run %s not found or not scheduled", runID)
	}
	return nil
}

const selectCols = `id, scheduled_time, actual_execution_time, reason, topic, details,
	status, error_message, execution_duration_ms, ai_response, metadata, created_at, updated_at`

// GetRun returns a single run by ID, or ErrNotFound.
func (l *Logger) GetRun(ctx context.Context, runID string) (*RunLog, error) {
	row := l.store.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM scheduler_runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return r, nil
}

// RecentRuns returns up to limit runs, newest first by update time,
// optionally filtered to the given statuses.
func (l *Logger) RecentRuns(ctx context.Context, limit int, statuses ...Status) ([]RunLog, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + selectCols + ` FROM scheduler_runs`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, st := range statuses {
			placeholders[i] = "?"
			args = append(args, st)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	return l.queryRuns(ctx, query, args...)
}

// RunsByTopic returns recent runs for a specific topic, newest first.
func (l *Logger) RunsByTopic(ctx context.Context, topic string, limit int) ([]RunLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return l.queryRuns(ctx,
		`SELECT `+selectCols+` FROM scheduler_runs WHERE topic = ? ORDER BY created_at DESC LIMIT ?`,
		topic, limit)
}

// FailedRuns returns recent failed runs for debugging.
func (l *Logger) FailedRuns(ctx context.Context, limit int) ([]RunLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return l.queryRuns(ctx,
		`SELECT `+selectCols+` FROM scheduler_runs WHERE status = ? ORDER BY created_at DESC LIMIT ?`,
		StatusFailed, limit)
}

// Statistics aggregates run outcomes over the trailing days window.
func (l *Logger) Statistics(ctx context.Context, days int) (Stats, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := l.clock.Now().AddDate(0, 0, -days).Format(timeLayout)

	stats := Stats{PeriodDays: days}
	var avgMs float64
	err := l.store.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN status = ? THEN execution_duration_ms END), 0)
		 FROM scheduler_runs WHERE created_at >= ?`,
		StatusCompleted, StatusFailed, StatusScheduled, StatusCompleted, cutoff,
	).Scan(&stats.TotalRuns, &stats.CompletedRuns, &stats.FailedRuns, &stats.ScheduledRuns, &avgMs)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate statistics: %w", err)
	}
	stats.AvgExecutionMs = int64(avgMs)

	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.CompletedRuns) / float64(stats.TotalRuns) * 100
	}
	return stats, nil
}

// Cleanup deletes run logs older than the given age in days. Returns the
// number of rows deleted.
func (l *Logger) Cleanup(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := l.clock.Now().AddDate(0, 0, -days).Format(timeLayout)

	res, err := l.store.db.ExecContext(ctx,
		`DELETE FROM scheduler_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logs.CtxInfo(ctx, "[runlog] cleaned up %d run logs older than %d days", n, days)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// scanning helpers
// ---------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func (l *Logger) queryRuns(ctx context.Context, query string, args ...any) ([]RunLog, error) {
	rows, err := l.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunLog
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanRun(row rowScanner) (*RunLog, error) {
	var (
		r             RunLog
		scheduledTime string
		actualTime    sql.NullString
		errMsg        sql.NullString
		durationMs    sql.NullInt64
		aiResponse    sql.NullString
		metaJSON      string
		createdAt     string
		updatedAt     string
	)
	err := row.Scan(&r.ID, &scheduledTime, &actualTime, &r.Reason, &r.Topic, &r.Details,
		&r.Status, &errMsg, &durationMs, &aiResponse, &metaJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if r.ScheduledTime, err = time.Parse(timeLayout, scheduledTime); err != nil {
		return nil, fmt.Errorf("parse scheduled_time: %w", err)
	}
	if actualTime.Valid {
		t, err := time.Parse(timeLayout, actualTime.String)
		if err != nil {
			return nil, fmt.Errorf("parse actual_execution_time: %w", err)
		}
		r.ActualExecutionTime = &t
	}
	if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	r.ErrorMessage = errMsg.String
	r.AIResponse = aiResponse.String
	if durationMs.Valid {
		v := durationMs.Int64
		r.ExecutionDurationMs = &v
	}
	if metaJSON != "" && metaJSON != "{}" {
		if err := sonic.UnmarshalString(metaJSON, &r.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &r, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
