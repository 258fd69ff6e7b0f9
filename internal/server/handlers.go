package server

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yumeai/yume/internal/memory"
	"github.com/yumeai/yume/internal/pkg/logs"
	"github.com/yumeai/yume/internal/runlog"
)

func (s *Server) handleHealth(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// --------------------------------------------------------------------------
// scheduler
// --------------------------------------------------------------------------

func (s *Server) handleGetNextRun(_ context.Context, c *app.RequestContext) {
	run, ok := s.engine.CurrentRun()
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "no run scheduled yet"})
		return
	}
	c.JSON(consts.StatusOK, run)
}

func (s *Server) handleCancelNextRun(ctx context.Context, c *app.RequestContext) {
	if !s.engine.CancelReminder(ctx) {
		c.JSON(consts.StatusNotFound, utils.H{"error": "no reminder armed"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"cancelled": true})
}

func (s *Server) handleRefresh(ctx context.Context, c *app.RequestContext) {
	run, runID := s.assistant.DetermineNextRun(ctx)
	c.JSON(consts.StatusOK, utils.H{
		"run_id":        runID,
		"next_run_time": run.NextRunTime.Format(time.RFC3339),
		"reason":        run.Reason,
		"topic":         run.Topic,
	})
}

func (s *Server) handleListRuns(ctx context.Context, c *app.RequestContext) {
	limit := queryInt(c, "limit", 20)

	var statuses []runlog.Status
	if raw := c.Query("status"); raw != "" {
		st := runlog.Status(raw)
		if !st.Valid() {
			c.JSON(consts.StatusBadRequest, utils.H{"error": "unknown status: " + raw})
			return
		}
		statuses = append(statuses, st)
	}

	runs, err := s.runLog.RecentRuns(ctx, limit, statuses...)
	if err != nil {
		logs.CtxError(ctx, "[server] list runs: %v", err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "query failed"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"runs": runs, "count": len(runs)})
}

func (s *Server) handleRunStats(ctx context.Context, c *app.RequestContext) {
	days := queryInt(c, "days", 7)
	stats, err := s.runLog.Statistics(ctx, days)
	if err != nil {
		logs.CtxError(ctx, "[server] run stats: %v", err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "query failed"})
		return
	}
	c.JSON(consts.StatusOK, stats)
}

func (s *Server) handleExecuted(_ context.Context, c *app.RequestContext) {
	n := queryInt(c, "limit", 0)
	executed := s.engine.Ledger().Recent(n)
	c.JSON(consts.StatusOK, utils.H{"executed": executed, "count": len(executed)})
}

// --------------------------------------------------------------------------
// external events
// --------------------------------------------------------------------------

type chatEventRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChatEvent(ctx context.Context, c *app.RequestContext) {
	var req chatEventRequest
	if err := sonic.Unmarshal(c.GetRequest().Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}

	s.assistant.NotifyExternalEvent(ctx, "chat")
	c.JSON(consts.StatusAccepted, utils.H{"status": "re-decision queued"})
}

type geofenceEventRequest struct {
	Place      string `json:"place"`
	Transition string `json:"transition"` // enter, exit
}

func (s *Server) handleGeofenceEvent(ctx context.Context, c *app.RequestContext) {
	var req geofenceEventRequest
	if err := sonic.Unmarshal(c.GetRequest().Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if req.Place == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "place is required"})
		return
	}
	if req.Transition != "enter" && req.Transition != "exit" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "transition must be enter or exit"})
		return
	}

	s.assistant.NotifyExternalEvent(ctx, "geofence:"+req.Transition+":"+req.Place)
	c.JSON(consts.StatusAccepted, utils.H{"status": "re-decision queued"})
}

// --------------------------------------------------------------------------
// memories
// --------------------------------------------------------------------------

func (s *Server) handleListMemories(_ context.Context, c *app.RequestContext) {
	entries := s.memories.All()
	c.JSON(consts.StatusOK, utils.H{"memories": entries, "count": len(entries)})
}

func (s *Server) handlePutMemory(ctx context.Context, c *app.RequestContext) {
	var entry memory.Entry
	if err := sonic.Unmarshal(c.GetRequest().Body(), &entry); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if entry.Content == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "content is required"})
		return
	}
	if entry.Kind == "" {
		entry.Kind = memory.KindReminder
	}

	entry = s.memories.Put(entry)
	if err := s.memories.Save(); err != nil {
		logs.CtxError(ctx, "[server] persist memories: %v", err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "persist failed"})
		return
	}

	// Memory mutations change the decision inputs.
	s.assistant.NotifyExternalEvent(ctx, "memory-update")
	c.JSON(consts.StatusOK, entry)
}

func (s *Server) handleDeleteMemory(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	if _, ok := s.memories.Get(id); !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "memory not found"})
		return
	}

	s.memories.Delete(id)
	if err := s.memories.Save(); err != nil {
		logs.CtxError(ctx, "[server] persist memories: %v", err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "persist failed"})
		return
	}

	s.assistant.NotifyExternalEvent(ctx, "memory-update")
	c.JSON(consts.StatusOK, utils.H{"deleted": id})
}

func queryInt(c *app.RequestContext, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
