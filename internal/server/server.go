// Package server exposes the scheduling engine over HTTP: current-run
// queries, run-log history, memory management, and the external event
// endpoints that feed the deferred re-decision path.
package server

import (
	"context"
	"sync"
	"time"

	hzServer "github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzprom "github.com/hertz-contrib/monitor-prometheus"

	"github.com/yumeai/yume/internal/assistant"
	"github.com/yumeai/yume/internal/config"
	"github.com/yumeai/yume/internal/memory"
	"github.com/yumeai/yume/internal/pkg/logs"
	"github.com/yumeai/yume/internal/pkg/prometheus"
	"github.com/yumeai/yume/internal/runlog"
	"github.com/yumeai/yume/internal/scheduler"
)

type Server struct {
	httpServer *hzServer.Hertz

	assistant *assistant.Assistant
	engine    *scheduler.Engine
	memories  *memory.Store
	runLog    *runlog.Logger

	stopOnce sync.Once
}

func New(cfg config.ServerConfig, a *assistant.Assistant, e *scheduler.Engine, m *memory.Store, rl *runlog.Logger) *Server {
	bind := cfg.Bind
	if bind == "" {
		bind = "0.0.0.0:8200"
	}
	metricsBind := cfg.MetricsBind
	if metricsBind == "" {
		metricsBind = "0.0.0.0:9200"
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hlog.SetLogger(logs.NewHlogLogger(logs.DefaultLogger()))

	hzSvr := hzServer.Default(
		hzServer.WithHostPorts(bind),
		hzServer.WithReadTimeout(timeout),
		hzServer.WithWriteTimeout(timeout),
		hzServer.WithExitWaitTime(5*time.Second),
		hzServer.WithTracer(hertzprom.NewServerTracer(
			metricsBind, "/metrics",
			hertzprom.WithRegistry(prometheus.GetRegistry()),
			hertzprom.WithEnableGoCollector(true),
		)),
	)

	s := &Server{
		httpServer: hzSvr,
		assistant:  a,
		engine:     e,
		memories:   m,
		runLog:     rl,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start(ctx context.Context) {
	logs.CtxInfo(ctx, "[server] starting HTTP server")
	go s.httpServer.Spin()
}

func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		err = s.httpServer.Shutdown(ctx)
		logs.CtxInfo(ctx, "[server] HTTP server stopped")
	})
	return err
}

func (s *Server) registerRoutes() {
	h := s.httpServer

	h.GET("/health", s.handleHealth)

	v1 := h.Group("/api/v1")

	sched := v1.Group("/scheduler")
	sched.GET("/next", s.handleGetNextRun)
	sched.DELETE("/next", s.handleCancelNextRun)
	sched.POST("/refresh", s.handleRefresh)
	sched.GET("/runs", s.handleListRuns)
	sched.GET("/runs/stats", s.handleRunStats)
	sched.GET("/executed", s.handleExecuted)

	events := v1.Group("/events")
	events.POST("/chat", s.handleChatEvent)
	events.POST("/geofence", s.handleGeofenceEvent)

	v1.GET("/memories", s.handleListMemories)
	v1.POST("/memories", s.handlePutMemory)
	v1.DELETE("/memories/:id", s.handleDeleteMemory)
}
