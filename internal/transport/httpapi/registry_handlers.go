package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/distsched/distsched/internal/resp"
)

type registerRequest struct {
	WorkerID string `json:"worker_id" binding:"required"`
	Cores    int    `json:"cores" binding:"required,min=1"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resp.BadRequest("malformed", err.Error()))
		return
	}
	s.registry.Register(req.WorkerID, req.Cores)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type heartbeatRequest struct {
	WorkerID string `json:"worker_id" binding:"required"`
}

func (s *Server) handleHeartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resp.BadRequest("malformed", err.Error()))
		return
	}
	ok := s.registry.Heartbeat(req.WorkerID)
	if !ok {
		c.JSON(http.StatusBadRequest, resp.BadRequest("unknown_worker", "worker is not registered"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type workerView struct {
	WorkerID string `json:"worker_id"`
	Cores    int    `json:"cores"`
}

func (s *Server) handleWorkers(c *gin.Context) {
	workers, totalSlots := s.registry.List()
	views := make([]workerView, len(workers))
	for i, w := range workers {
		views[i] = workerView{WorkerID: w.WorkerID, Cores: w.Cores}
	}
	c.JSON(http.StatusOK, gin.H{
		"worker_count": len(views),
		"total_slots":  totalSlots,
		"workers":      views,
	})
}
