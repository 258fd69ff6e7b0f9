// Package assistant wires the scheduling core together: it runs the full
// next-run decision pass, delivers fired reminders over the notify channels,
// and reacts to external events by requesting a debounced re-decision.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/yumeai/yume/internal/clock"
	"github.com/yumeai/yume/internal/memory"
	"github.com/yumeai/yume/internal/notify"
	"github.com/yumeai/yume/internal/pkg/logs"
	"github.com/yumeai/yume/internal/pkg/prometheus"
	"github.com/yumeai/yume/internal/runlog"
	"github.com/yumeai/yume/internal/scheduler"
	"github.com/yumeai/yume/internal/suggest"
)

// Options configures an Assistant. Suggester may be nil, in which case
// decisions use only the deterministic resolver and the fallback schedule.
type Options struct {
	Clock     *clock.Clock
	Memories  *memory.Store
	Resolver  *scheduler.Resolver
	Suggester suggest.Suggester
	Engine    *scheduler.Engine
	Notifiers *notify.Registry
	RunLog    *runlog.Logger

	MinLead time.Duration

	// MemoryMaxAge is how long expired one-time reminders are kept before
	// the janitor removes them.
	MemoryMaxAge time.Duration
	// RunLogRetentionDays bounds the run-log history in days.
	RunLogRetentionDays int
}

type Assistant struct {
	clock     *clock.Clock
	memories  *memory.Store
	resolver  *scheduler.Resolver
	suggester suggest.Suggester
	engine    *scheduler.Engine
	notifiers *notify.Registry
	runLog    *runlog.Logger

	minLead             time.Duration
	memoryMaxAge        time.Duration
	runLogRetentionDays int
}

func New(opts Options) *Assistant {
	minLead := opts.MinLead
	if minLead <= 0 {
		minLead = scheduler.DefaultMinLead
	}
	memoryMaxAge := opts.MemoryMaxAge
	if memoryMaxAge <= 0 {
		memoryMaxAge = 7 * 24 * time.Hour
	}
	retention := opts.RunLogRetentionDays
	if retention <= 0 {
		retention = 30
	}

	a := &Assistant{
		clock:               opts.Clock,
		memories:            opts.Memories,
		resolver:            opts.Resolver,
		suggester:           opts.Suggester,
		engine:              opts.Engine,
		notifiers:           opts.Notifiers,
		runLog:              opts.RunLog,
		minLead:             minLead,
		memoryMaxAge:        memoryMaxAge,
		runLogRetentionDays: retention,
	}

	a.engine.SetCallbacks(scheduler.Callbacks{
		OnReminderFire: a.onReminderFire,
		OnJanitorFire:  a.onJanitorFire,
		OnDeferred:     a.onDeferred,
	})
	return a
}

// DetermineNextRun executes one full decision pass and installs the result
// as the pending reminder. It always leaves exactly one run scheduled, even
// when the memory store is empty or the suggestion call fails. Returns the
// installed decision and its run ID.
func (a *Assistant) DetermineNextRun(ctx context.Context) (scheduler.NextRun, string) {
	now := a.clock.Now()
	entries := a.memories.All()

	if len(entries) == 0 {
		run := scheduler.Fallback(scheduler.FallbackNoMemories, now, scheduler.FallbackOffset)
		logs.CtxInfo(ctx, "[assistant] %s", run.Reason)
		return a.install(ctx, run, map[string]string{"source": "fallback"})
	}

	var deterministic *scheduler.NextRun
	if det, ok := a.resolver.Deterministic(entries, now); ok {
		deterministic = &det
	}

	aiRun, err := a.proposeAI(ctx, entries, now)
	if err != nil {
		logs.CtxError(ctx, "[assistant] suggestion pass failed: %v", err)
		run := scheduler.Fallback(scheduler.FallbackAgentError, now, scheduler.FallbackOffset)
		return a.install(ctx, run, map[string]string{"source": "fallback"})
	}

	decision := scheduler.Arbitrate(aiRun, deterministic, now)
	if decision.Metadata == nil {
		decision.Metadata = map[string]string{"source": "fallback"}
	}
	return a.install(ctx, decision.Chosen, decision.Metadata)
}

// proposeAI runs the suggestion call and validates its result. A nil, nil
// return means the suggester is disabled; arbitration then sees only the
// deterministic side.
func (a *Assistant) proposeAI(ctx context.Context, entries map[string]memory.Entry, now time.Time) (*scheduler.NextRun, error) {
	if a.suggester == nil {
		return nil, nil
	}

	raw, err := a.suggester.Suggest(ctx, suggest.Input{
		Now:               now,
		FormattedMemories: memory.FormatForAnalysis(entries, now),
		RecentExecuted:    a.engine.Ledger().Recent(0),
	})
	if err != nil {
		return nil, err
	}

	validated := scheduler.ValidateSuggestion(a.clock, raw, now, a.minLead)
	return &validated, nil
}

func (a *Assistant) install(ctx context.Context, run scheduler.NextRun, metadata map[string]string) (scheduler.NextRun, string) {
	source := metadata["source"]
	if source == "" {
		source = "fallback"
	}
	prometheus.RunsScheduled.WithLabelValues(source).Inc()

	runID := a.engine.ScheduleNextRun(ctx, run, metadata)
	return run, runID
}

// onReminderFire delivers the reminder and then queues a deferred re-decision
// so a fresh run is always scheduled after delivery.
func (a *Assistant) onReminderFire(ctx context.Context, params scheduler.ReminderJobParams) (string, error) {
	defer a.engine.RequestDeferred(ctx)

	text := reminderText(params)
	if err := a.notifiers.Broadcast(ctx, text); err != nil {
		return "", fmt.Errorf("deliver reminder: %w", err)
	}

	logs.CtxInfo(ctx, "[assistant] reminder delivered: %s", params.Topic)
	return text, nil
}

func (a *Assistant) onDeferred(ctx context.Context) {
	run, runID := a.DetermineNextRun(ctx)
	logs.CtxInfo(ctx, "[assistant] re-decision installed run %s for %s",
		runID, run.NextRunTime.Format(time.RFC3339))
}

// JanitorResult summarizes one maintenance pass.
type JanitorResult struct {
	PrunedMemories int
	DeletedRunLogs int64
}

func (a *Assistant) onJanitorFire(ctx context.Context) error {
	res, err := a.RunJanitor(ctx)
	if err != nil {
		return err
	}
	logs.CtxInfo(ctx, "[assistant] janitor pass: %d memories pruned, %d run logs deleted",
		res.PrunedMemories, res.DeletedRunLogs)
	return nil
}

// RunJanitor prunes expired one-time reminders and trims the run-log history.
// The memory store save and the run-log delete are independent; a failure in
// one does not skip the other.
func (a *Assistant) RunJanitor(ctx context.Context) (JanitorResult, error) {
	var res JanitorResult

	res.PrunedMemories = a.memories.PruneExpiredOneTime(a.clock.Now(), a.memoryMaxAge)
	var saveErr error
	if res.PrunedMemories > 0 {
		if saveErr = a.memories.Save(); saveErr != nil {
			logs.CtxError(ctx, "[assistant] persist pruned memories: %v", saveErr)
		}
	}

	deleted, err := a.runLog.Cleanup(ctx, a.runLogRetentionDays)
	if err != nil {
		return res, fmt.Errorf("run log cleanup: %w", err)
	}
	res.DeletedRunLogs = deleted

	if saveErr != nil {
		return res, fmt.Errorf("persist pruned memories: %w", saveErr)
	}
	return res, nil
}

// NotifyExternalEvent records an external trigger (chat message, geofence
// transition, memory mutation) and queues a debounced re-decision.
func (a *Assistant) NotifyExternalEvent(ctx context.Context, trigger string) {
	logs.CtxInfo(ctx, "[assistant] external trigger: %s", trigger)
	a.engine.RequestDeferred(ctx)
}

func reminderText(params scheduler.ReminderJobParams) string {
	if params.Topic != "" {
		return fmt.Sprintf("Reminder: %s", params.Topic)
	}
	return params.Reason
}
