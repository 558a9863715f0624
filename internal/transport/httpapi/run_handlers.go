package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/distsched/distsched/internal/model"
	"github.com/distsched/distsched/internal/resp"
	"github.com/distsched/distsched/internal/runstate"
)

type startRequest struct {
	DatasetFile string  `json:"dataset_file" binding:"required"`
	Speedup     float64 `json:"speedup"`
	MinSlots    int     `json:"min_slots"`
	QuantumMs   int64   `json:"quantum_ms"`
	Policy      string  `json:"policy" binding:"required"`
}

func parseKind(s string) (model.Kind, bool) {
	switch s {
	case string(model.FIFO), string(model.Priority), string(model.RR):
		return model.Kind(s), true
	default:
		return "", false
	}
}

func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resp.BadRequest("malformed", err.Error()))
		return
	}
	kind, ok := parseKind(req.Policy)
	if !ok {
		c.JSON(http.StatusBadRequest, resp.BadRequest("malformed", "policy must be one of fifo, priority, rr"))
		return
	}
	if kind == model.RR && req.QuantumMs <= 0 {
		c.JSON(http.StatusBadRequest, resp.BadRequest("malformed", "quantum_ms is required and must be positive for the rr policy"))
		return
	}

	runID, err := s.engine.Start(runstate.StartRequest{
		DatasetFile: req.DatasetFile,
		Speedup:     req.Speedup,
		MinSlots:    req.MinSlots,
		QuantumMs:   req.QuantumMs,
		Kind:        kind,
	})
	if err != nil {
		code := "bad_request"
		switch {
		case errors.Is(err, runstate.ErrInsufficientSlots):
			code = "insufficient_slots"
		case errors.Is(err, runstate.ErrDatasetInvalid):
			code = "dataset_invalid"
		}
		c.JSON(http.StatusBadRequest, resp.BadRequest(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID})
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.engine.Status()
	switch st.Status {
	case "no_run":
		c.JSON(http.StatusOK, gin.H{"status": "no_run"})
	case "done":
		c.JSON(http.StatusOK, gin.H{
			"status":   "done",
			"run_id":   st.RunID,
			"summary":  st.Summary,
			"jobs_csv": st.JobsCSV,
			"run_csv":  st.RunCSV,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":      "running",
			"run_id":      st.RunID,
			"completed":   st.Completed,
			"total":       st.Total,
			"ready_len":   st.ReadyLen,
			"pending_len": st.PendingLen,
		})
	}
}

type nextRequest struct {
	WorkerID  string `json:"worker_id" binding:"required"`
	CoreID    int    `json:"core_id"`
	TimeoutMs int64  `json:"timeout_ms"`
}

func (s *Server) handleNext(c *gin.Context) {
	var req nextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resp.BadRequest("malformed", err.Error()))
		return
	}
	if req.TimeoutMs <= 0 {
		req.TimeoutMs = 20000
	}

	reply, err := s.engine.Next(runstate.NextRequest{
		WorkerID:  req.WorkerID,
		CoreID:    req.CoreID,
		TimeoutMs: req.TimeoutMs,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, resp.BadRequest("unknown_worker", "worker/core is not alive"))
		return
	}

	switch reply.Status {
	case "ok":
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"job_id":       reply.Dispatch.JobID,
			"execution_ms": reply.Dispatch.ExecutionMs,
			"slice_ms":     reply.Dispatch.SliceMs,
			"remaining_ms": reply.Dispatch.RemainingMs,
			"priority":     reply.Dispatch.Priority,
			"arrival_ms":   reply.Dispatch.ArrivalMs,
		})
	default:
		c.JSON(http.StatusOK, gin.H{"status": reply.Status})
	}
}

type doneRequest struct {
	WorkerID        string   `json:"worker_id" binding:"required"`
	CoreID          int      `json:"core_id"`
	JobID           string   `json:"job_id" binding:"required"`
	StartedWallMs   int64    `json:"started_wall_ms" binding:"required"`
	FinishedWallMs  int64    `json:"finished_wall_ms" binding:"required"`
	RanMs           int64    `json:"ran_ms"`
	RemainingAfterMs int64   `json:"remaining_after_ms"`
	CPUPercent      *float64 `json:"cpu_percent"`
	MemoryMB        *float64 `json:"memory_mb"`
}

func (s *Server) handleDone(c *gin.Context) {
	var req doneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resp.BadRequest("malformed", err.Error()))
		return
	}

	reply, err := s.engine.Done(runstate.DoneRequest{
		WorkerID: req.WorkerID,
		CoreID:   req.CoreID,
		JobID:    req.JobID,
		Report: model.CompletionReport{
			StartedWallMs:     req.StartedWallMs,
			FinishedWallMs:    req.FinishedWallMs,
			RanMs:             req.RanMs,
			RemainingAfterMs:  req.RemainingAfterMs,
			CPUPercent:        req.CPUPercent,
			MemoryMB:          req.MemoryMB,
		},
	})
	if err != nil {
		code := "unknown_worker"
		if errors.Is(err, runstate.ErrUnknownJob) {
			code = "unknown_job"
		}
		c.JSON(http.StatusBadRequest, resp.BadRequest(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": reply.Status})
}
