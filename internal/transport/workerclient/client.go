// Package workerclient is the worker binary's outbound half of the
// Dispatch Protocol: register/heartbeat/next/done calls against the
// scheduler's HTTP API.
//
// The teacher's internal/http10 spoke raw HTTP/1.0 over net.Conn; since
// the wire format is now JSON over net/http (carried by gin on the
// server side), this package replaces it with a plain net/http client
// with a per-call timeout. Each call is a single attempt; retry with
// backoff is left to the callers (internal/worker and cmd/worker).
package workerclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

func (c *Client) postJSON(path string, body, out any, timeout time.Duration) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.http
	if timeout > 0 {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errBody struct {
			Code   string `json:"error"`
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("%s: %s: %s", path, errBody.Code, errBody.Detail)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) Register(workerID string, cores int) error {
	var out struct {
		OK bool `json:"ok"`
	}
	return c.postJSON("/register", map[string]any{"worker_id": workerID, "cores": cores}, &out, 5*time.Second)
}

func (c *Client) Heartbeat(workerID string) error {
	var out struct {
		OK bool `json:"ok"`
	}
	return c.postJSON("/heartbeat", map[string]any{"worker_id": workerID}, &out, 5*time.Second)
}

// NextReply is the /next response this worker cares about.
type NextReply struct {
	Status      string   `json:"status"`
	JobID       string   `json:"job_id"`
	ExecutionMs int64    `json:"execution_ms"`
	SliceMs     int64    `json:"slice_ms"`
	RemainingMs int64    `json:"remaining_ms"`
	Priority    *int64   `json:"priority"`
	ArrivalMs   int64    `json:"arrival_ms"`
}

// Next long-polls for a dispatch, blocking up to timeoutMs server-side
// plus a fixed client-side margin.
func (c *Client) Next(workerID string, coreID int, timeoutMs int64) (NextReply, error) {
	var out NextReply
	err := c.postJSON("/next", map[string]any{
		"worker_id":  workerID,
		"core_id":    coreID,
		"timeout_ms": timeoutMs,
	}, &out, time.Duration(timeoutMs)*time.Millisecond+5*time.Second)
	return out, err
}

// DoneReport is what a core sends once it has finished running (or been
// preempted out of) a dispatched slice.
type DoneReport struct {
	JobID             string
	StartedWallMs     int64
	FinishedWallMs    int64
	RanMs             int64
	RemainingAfterMs  int64
	CPUPercent        *float64
	MemoryMB          *float64
}

func (c *Client) Done(workerID string, coreID int, report DoneReport) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.postJSON("/done", map[string]any{
		"worker_id":          workerID,
		"core_id":            coreID,
		"job_id":             report.JobID,
		"started_wall_ms":    report.StartedWallMs,
		"finished_wall_ms":   report.FinishedWallMs,
		"ran_ms":             report.RanMs,
		"remaining_after_ms": report.RemainingAfterMs,
		"cpu_percent":        report.CPUPercent,
		"memory_mb":          report.MemoryMB,
	}, &out, 5*time.Second)
}
