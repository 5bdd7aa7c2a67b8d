// Package server exposes the discovery pipelines over HTTP so runs can be
// triggered and inspected without shell access to the host.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blkoutuk/research-agent/internal/agent"
	"github.com/blkoutuk/research-agent/internal/core/model"
	"github.com/blkoutuk/research-agent/internal/store"
)

// RunLister reads recorded discovery runs.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]store.RunLog, error)
}

type Server struct {
	coordinator *agent.Coordinator
	runs        RunLister
}

func New(coordinator *agent.Coordinator, runs RunLister) *Server {
	return &Server{coordinator: coordinator, runs: runs}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.POST("/runs/:type", s.TriggerRun)
	r.GET("/runs", s.ListRuns)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TriggerRun executes the named pipeline synchronously and returns its
// report. Runs are long; callers should set generous client timeouts.
func (s *Server) TriggerRun(c *gin.Context) {
	ctx := c.Request.Context()

	var report model.RunReport
	switch c.Param("type") {
	case "daily":
		report = s.coordinator.RunDaily(ctx)
	case "news":
		report = s.coordinator.RunNews(ctx)
	case "events":
		report = s.coordinator.RunEvents(ctx)
	case "weekly":
		report = s.coordinator.RunWeeklyDeep(ctx)
	case "grants":
		report = s.coordinator.RunGrants(ctx)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown run type, expected daily|news|events|weekly|grants"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) ListRuns(c *gin.Context) {
	logs, err := s.runs.RecentRuns(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	if logs == nil {
		logs = []store.RunLog{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": logs})
}
