package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/gopkg/lang/fastrand"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/yumeai/yume/internal/clock"
	"github.com/yumeai/yume/internal/pkg/logs"
	"github.com/yumeai/yume/internal/pkg/prometheus"
)

// janitorMaxJitter is the upper bound of random delay added to each janitor
// fire time so maintenance never aligns exactly with the wall-clock boundary.
const janitorMaxJitter = 60 * time.Second

// RunRecorder receives lifecycle transitions of scheduled runs. All calls
// from the engine are best-effort: failures are logged and never abort the
// scheduling or execution path.
type RunRecorder interface {
	LogScheduled(ctx context.Context, runID string, scheduledTime time.Time, reason, topic, details string, metadata map[string]string) error
	LogExecutionStart(ctx context.Context, runID string) error
	LogExecutionCompletion(ctx context.Context, runID string, durationMs int64, aiResponse string) error
	LogExecutionFailure(ctx context.Context, runID string, errorMessage string, durationMs int64) error
	LogCancelled(ctx context.Context, runID string) error
}

// Callbacks are the engine's outward hooks. OnReminderFire returns the
// downstream response text recorded on the run log entry.
type Callbacks struct {
	OnReminderFire func(ctx context.Context, params ReminderJobParams) (string, error)
	OnJanitorFire  func(ctx context.Context) error
	OnDeferred     func(ctx context.Context)
}

// Options configures an Engine.
type Options struct {
	Clock    *clock.Clock
	Recorder RunRecorder
	Ledger   *Ledger

	// Debounce is the deferred-trigger collapse window (default 60s).
	Debounce time.Duration
	// JanitorCron is a 5-field cron expression for the maintenance slot
	// (default "0 */12 * * *").
	JanitorCron string
}

// Engine owns the three timer slots of the scheduling core: the single
// replace-on-write reminder slot, the recurring janitor slot, and the
// debounced deferred-trigger slot. Construct one per process and pass it by
// reference; there is no package-level instance.
type Engine struct {
	clock    *clock.Clock
	recorder RunRecorder
	ledger   *Ledger
	cb       Callbacks

	debounce    time.Duration
	janitorSpec cron.Schedule

	mu            sync.Mutex
	stopped       bool
	reminderTimer *time.Timer
	params        ReminderJobParams
	current       *NextRun
	deferredTimer *time.Timer
	janitorTimer  *time.Timer

	wg sync.WaitGroup
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NewEngine creates an Engine. Callbacks may be set before Start via
// SetCallbacks; a nil hook is a no-op.
func NewEngine(opts Options) (*Engine, error) {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	spec := opts.JanitorCron
	if spec == "" {
		spec = "0 */12 * * *"
	}
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return nil, err
	}

	ledger := opts.Ledger
	if ledger == nil {
		ledger = NewLedger(0)
	}

	return &Engine{
		clock:       opts.Clock,
		recorder:    opts.Recorder,
		ledger:      ledger,
		debounce:    debounce,
		janitorSpec: sched,
	}, nil
}

// SetCallbacks installs the outward hooks. Must be called before Start.
func (e *Engine) SetCallbacks(cb Callbacks) {
	e.cb = cb
}

// Ledger returns the executed-reminder history.
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// Start arms the janitor slot. The reminder slot stays idle until the first
// ScheduleNextRun call.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = false
	e.armJanitorLocked()
	logs.CtxInfo(ctx, "[scheduler] engine started (debounce=%s)", e.debounce)
}

// Stop disarms every slot and waits for in-flight fires to finish, bounded by
// ctx.
func (e *Engine) Stop(ctx context.Context) {
	e.mu.Lock()
	e.stopped = true
	if e.reminderTimer != nil {
		e.reminderTimer.Stop()
		e.reminderTimer = nil
	}
	if e.deferredTimer != nil {
		e.deferredTimer.Stop()
		e.deferredTimer = nil
	}
	if e.janitorTimer != nil {
		e.janitorTimer.Stop()
		e.janitorTimer = nil
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logs.CtxWarn(ctx, "[scheduler] stop timed out waiting for running fires")
	}
	prometheus.NextRunUnix.Set(0)
	logs.CtxInfo(ctx, "[scheduler] engine stopped")
}

// ScheduleNextRun installs run as the single pending reminder, replacing any
// previously armed timer. The run-log write happens first so the prior
// Scheduled row is cancelled before the new decision becomes visible.
// Returns the run ID of the installed decision.
func (e *Engine) ScheduleNextRun(ctx context.Context, run NextRun, metadata map[string]string) string {
	runID := uuid.New().String()

	if e.recorder != nil {
		err := e.recorder.LogScheduled(ctx, runID, run.NextRunTime, run.Reason, run.Topic, run.Details, metadata)
		if err != nil {
			logs.CtxWarn(ctx, "[scheduler] log scheduled run %s: %v", runID, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return runID
	}

	if e.reminderTimer != nil {
		e.reminderTimer.Stop()
	}

	e.params = ReminderJobParams{
		RunID:   runID,
		Reason:  run.Reason,
		Topic:   run.Topic,
		Details: run.Details,
	}
	e.current = &run

	delay := run.NextRunTime.Sub(e.clock.Now())
	if delay < 0 {
		delay = 0
	}
	params := e.params
	e.reminderTimer = time.AfterFunc(delay, func() {
		e.fireReminder(params)
	})

	prometheus.NextRunUnix.Set(float64(run.NextRunTime.Unix()))
	logs.CtxInfo(ctx, "[scheduler] scheduled reminder %s for %s: %s",
		runID, run.NextRunTime.Format(time.RFC3339), run.Reason)
	return runID
}

// CancelReminder disarms the reminder slot. The last-known NextRun stays
// queryable; the run-log row is marked Cancelled so the at-most-one-active
// invariant holds even across a bare cancel. Returns false when nothing was
// armed.
func (e *Engine) CancelReminder(ctx context.Context) bool {
	e.mu.Lock()
	if e.reminderTimer == nil {
		e.mu.Unlock()
		logs.CtxInfo(ctx, "[scheduler] no reminder to cancel")
		return false
	}
	e.reminderTimer.Stop()
	e.reminderTimer = nil
	runID := e.params.RunID
	e.mu.Unlock()

	if e.recorder != nil && runID != "" {
		if err := e.recorder.LogCancelled(ctx, runID); err != nil {
			logs.CtxWarn(ctx, "[scheduler] log cancel for run %s: %v", runID, err)
		}
	}
	prometheus.NextRunUnix.Set(0)
	logs.CtxInfo(ctx, "[scheduler] reminder %s cancelled", runID)
	return true
}

// CurrentRun returns the most recently installed decision. The boolean is
// false before the first schedule.
func (e *Engine) CurrentRun() (NextRun, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return NextRun{}, false
	}
	return *e.current, true
}

// RequestDeferred arms (or re-arms) the debounced deferred-trigger slot.
// Rapid repeated calls collapse into one OnDeferred invocation, fired one
// debounce window after the last call.
func (e *Engine) RequestDeferred(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}

	if e.deferredTimer != nil {
		e.deferredTimer.Stop()
		prometheus.DeferredCollapsed.Inc()
		logs.CtxDebug(ctx, "[scheduler] deferred trigger re-armed")
	}
	e.deferredTimer = time.AfterFunc(e.debounce, e.fireDeferred)
}

// ---------------------------------------------------------------------------
// fire paths
// ---------------------------------------------------------------------------

func (e *Engine) fireReminder(p ReminderJobParams) {
	e.mu.Lock()
	if e.stopped || e.params.RunID != p.RunID {
		// Superseded between timer elapse and execution; the replacing
		// schedule already cancelled this run's log row.
		e.mu.Unlock()
		return
	}
	e.reminderTimer = nil
	e.wg.Add(1)
	e.mu.Unlock()
	defer e.wg.Done()

	ctx := logs.SetLogID(context.Background(), logs.NewLogID())
	logs.CtxInfo(ctx, "[scheduler] firing reminder %s: %s", p.RunID, p.Reason)
	prometheus.NextRunUnix.Set(0)

	if e.recorder != nil {
		if err := e.recorder.LogExecutionStart(ctx, p.RunID); err != nil {
			logs.CtxWarn(ctx, "[scheduler] log execution start %s: %v", p.RunID, err)
		}
	}

	start := e.clock.Now()
	var (
		resp string
		err  error
	)
	if e.cb.OnReminderFire != nil {
		resp, err = e.cb.OnReminderFire(ctx, p)
	}
	elapsed := e.clock.Now().Sub(start)
	prometheus.ExecutionDuration.Observe(elapsed.Seconds())

	if err != nil {
		prometheus.RunsExecuted.WithLabelValues("failed").Inc()
		logs.CtxError(ctx, "[scheduler] reminder %s failed after %s: %v", p.RunID, elapsed, err)
		if e.recorder != nil {
			if lerr := e.recorder.LogExecutionFailure(ctx, p.RunID, err.Error(), elapsed.Milliseconds()); lerr != nil {
				logs.CtxWarn(ctx, "[scheduler] log execution failure %s: %v", p.RunID, lerr)
			}
		}
		return
	}

	prometheus.RunsExecuted.WithLabelValues("completed").Inc()
	if e.recorder != nil {
		if lerr := e.recorder.LogExecutionCompletion(ctx, p.RunID, elapsed.Milliseconds(), resp); lerr != nil {
			logs.CtxWarn(ctx, "[scheduler] log execution completion %s: %v", p.RunID, lerr)
		}
	}
	e.ledger.Append(e.clock.Now(), p.Topic)
	logs.CtxInfo(ctx, "[scheduler] reminder %s completed in %s", p.RunID, elapsed)
}

func (e *Engine) fireDeferred() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.deferredTimer = nil
	e.wg.Add(1)
	e.mu.Unlock()
	defer e.wg.Done()

	ctx := logs.SetLogID(context.Background(), logs.NewLogID())
	logs.CtxDebug(ctx, "[scheduler] deferred trigger fired")
	if e.cb.OnDeferred != nil {
		e.cb.OnDeferred(ctx)
	}
}

func (e *Engine) fireJanitor() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.armJanitorLocked()
	e.mu.Unlock()
	defer e.wg.Done()

	ctx := logs.SetLogID(context.Background(), logs.NewLogID())
	logs.CtxInfo(ctx, "[scheduler] janitor fired")
	if e.cb.OnJanitorFire != nil {
		if err := e.cb.OnJanitorFire(ctx); err != nil {
			logs.CtxWarn(ctx, "[scheduler] janitor run: %v", err)
		}
	}
}

// armJanitorLocked schedules the next janitor fire. Caller holds e.mu.
func (e *Engine) armJanitorLocked() {
	if e.janitorTimer != nil {
		e.janitorTimer.Stop()
	}
	now := e.clock.Now()
	next := e.janitorSpec.Next(now)
	jitter := time.Duration(fastrand.Int63n(int64(janitorMaxJitter)))
	e.janitorTimer = time.AfterFunc(next.Sub(now)+jitter, e.fireJanitor)
}
