package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/yumeai/yume/internal/assistant"
	"github.com/yumeai/yume/internal/clock"
	"github.com/yumeai/yume/internal/config"
	"github.com/yumeai/yume/internal/consts"
	"github.com/yumeai/yume/internal/memory"
	"github.com/yumeai/yume/internal/notify"
	"github.com/yumeai/yume/internal/pkg/logs"
	"github.com/yumeai/yume/internal/runlog"
	"github.com/yumeai/yume/internal/scheduler"
	"github.com/yumeai/yume/internal/server"
	"github.com/yumeai/yume/internal/suggest"
)

// stopTimeout bounds the graceful shutdown of the engine and HTTP server.
const stopTimeout = 10 * time.Second

var serveHwd = &ServeRunner{}

type ServeRunner struct{}

func (r *ServeRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the scheduling engine and HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the config file",
				Value: consts.DefaultConfigPath(),
			},
		},
		Action: r.run,
	}
}

func (r *ServeRunner) run(ctx context.Context, cmd *cli.Command) error {
	cfgPath := cmd.String("config")

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		fmt.Println("Yume is not configured yet. Run \"yume onboard\" to get started.")
		return nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config error: %w", err)
	}

	if err = r.initLogger(cfg.Logging); err != nil {
		return fmt.Errorf("init logger error: %w", err)
	}

	logs.CtxInfo(ctx, "booting Yume runtime, using config file: %s...", cfgPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	userClock, err := clock.New(cfg.Scheduler.UserTimezone)
	if err != nil {
		return fmt.Errorf("init clock: %w", err)
	}

	memories := memory.NewStore(cfg.Memory.Store)
	if err = memories.Load(); err != nil {
		return fmt.Errorf("load memory store: %w", err)
	}
	logs.CtxInfo(ctx, "loaded %d memories from %s", memories.Len(), cfg.Memory.Store)

	runStore, err := runlog.Open(cfg.RunLog.Dir)
	if err != nil {
		return fmt.Errorf("open run log store: %w", err)
	}
	defer runStore.Close()
	runLogger := runlog.NewLogger(runStore, userClock)

	engine, err := scheduler.NewEngine(scheduler.Options{
		Clock:       userClock,
		Recorder:    runLogger,
		Ledger:      scheduler.NewLedger(cfg.Scheduler.LedgerSize),
		Debounce:    time.Duration(cfg.Scheduler.DebounceSec) * time.Second,
		JanitorCron: cfg.Scheduler.JanitorCron,
	})
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	suggester, err := r.initSuggester(ctx, cfg.Suggest, userClock)
	if err != nil {
		return fmt.Errorf("init suggester: %w", err)
	}

	notifiers, err := r.initNotifiers(ctx, cfg.Channels)
	if err != nil {
		return fmt.Errorf("init notifiers: %w", err)
	}

	minLead := time.Duration(cfg.Scheduler.MinLeadMinutes) * time.Minute
	asst := assistant.New(assistant.Options{
		Clock:               userClock,
		Memories:            memories,
		Resolver:            scheduler.NewResolver(userClock, minLead, time.Duration(cfg.Scheduler.NearbyMinutes)*time.Minute),
		Suggester:           suggester,
		Engine:              engine,
		Notifiers:           notifiers,
		RunLog:              runLogger,
		MinLead:             minLead,
		MemoryMaxAge:        time.Duration(cfg.Memory.PruneAfterDays) * 24 * time.Hour,
		RunLogRetentionDays: cfg.RunLog.RetentionDays,
	})

	engine.Start(ctx)
	srv := server.New(cfg.Server, asst, engine, memories, runLogger)
	srv.Start(ctx)

	// Install the first decision on boot; the system is never unscheduled
	// while running.
	run, runID := asst.DetermineNextRun(ctx)
	logs.CtxInfo(ctx, "initial run %s scheduled for %s: %s",
		runID, run.NextRunTime.Format(time.RFC3339), run.Reason)

	logs.CtxInfo(ctx, "ALL IS WELL!!! Press Ctrl+C to stop.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case sig := <-signalCh:
		logs.CtxInfo(ctx, "Received shutdown signal (%s). Stopping runtime...", sig.String())
	case <-ctx.Done():
		logs.CtxInfo(ctx, "Context canceled. Stopping runtime...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()

	engine.Stop(stopCtx)
	if err = srv.Stop(stopCtx); err != nil {
		logs.CtxError(ctx, "stop http server error: %v", err)
	}
	if err = memories.Save(); err != nil {
		logs.CtxError(ctx, "persist memories on shutdown: %v", err)
	}

	logs.CtxInfo(ctx, "all stopped, good bye!")
	return nil
}

func (r *ServeRunner) initLogger(cfg config.LoggingConfig) error {
	return logs.Init(logs.Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		File:       cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	})
}

func (r *ServeRunner) initSuggester(ctx context.Context, cfg config.SuggestConfig, c *clock.Clock) (suggest.Suggester, error) {
	if !cfg.Enabled {
		logs.CtxInfo(ctx, "AI suggestions disabled, running deterministic-only")
		return nil, nil
	}

	sCfg, err := suggest.ParseConfig(cfg.Model, cfg.Config)
	if err != nil {
		return nil, err
	}
	return suggest.NewOpenAISuggester(ctx, *sCfg, c)
}

func (r *ServeRunner) initNotifiers(ctx context.Context, channels map[string]config.ChannelConfig) (*notify.Registry, error) {
	registry := notify.NewRegistry()

	for id, chCfg := range channels {
		chCfg.ID = id
		if !chCfg.Enabled {
			logs.CtxInfo(ctx, "channel #%s is disabled, skipping", id)
			continue
		}

		n, err := notify.NewNotifier(id, &chCfg)
		if err != nil {
			return nil, fmt.Errorf("create notifier %s: %w", id, err)
		}
		registry.Register(n)
		logs.CtxInfo(ctx, "registered notifier #%s (%s)", id, n.Type())
	}

	if registry.Len() == 0 {
		registry.Register(notify.NewConsole("console"))
		logs.CtxInfo(ctx, "no channels configured, using console notifier")
	}

	return registry, nil
}
