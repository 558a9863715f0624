// Package results computes per-run statistics and writes the two CSV
// artifacts a finalized run produces: per-job detail and a one-row summary.
//
// Grounded on the original Python scheduler's finalize_run: build one row
// per completed job, compute response/wait/execution/slowdown, then a
// summary of means and percentiles. CSV writes are best-effort per
// spec.md %5/%7 — a write failure is logged and leaves the run done with
// no artifact paths, it never crashes finalization.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/distsched/distsched/internal/model"
)

// JobRow is one finalized job's metrics, in the shape the per-job CSV
// writes out.
type JobRow struct {
	JobID            string
	ServiceMs        int64
	ArrivalMs        int64
	StartMs          int64
	FinishMs         int64
	WaitingMs        int64
	ExecutionMs      int64
	ResponseMs       int64
	Slowdown         float64
	Slices           int
	Preemptions      int
	Priority         *int64
	CPUPercent       *float64
	MemoryMB         *float64
}

// Summary is the one-row run summary.
type Summary struct {
	RunID             string
	DatasetFile       string
	Speedup           float64
	QuantumMs         *int64
	Jobs              int
	MeanResponseMs    float64
	P50ResponseMs     float64
	P95ResponseMs     float64
	P99ResponseMs     float64
	MeanWaitMs        float64
	MeanExecutionMs   *float64
	AvgSlicesPerJob   *float64
	TotalSlotsAtEnd   int
}

// BuildJobRows converts finished jobs into JobRow, skipping any job that
// (by protocol violation) never finished.
func BuildJobRows(jobs map[string]*model.Job) []JobRow {
	rows := make([]JobRow, 0, len(jobs))
	for _, j := range jobs {
		if !j.HasStarted() || !j.HasFinished() {
			continue
		}
		waiting := *j.StartMs - j.ArrivalMs
		execution := *j.FinishMs - *j.StartMs
		response := *j.FinishMs - j.ArrivalMs
		denom := j.ServiceMs
		if denom < 1 {
			denom = 1
		}
		row := JobRow{
			JobID:       j.JobID,
			ServiceMs:   j.ServiceMs,
			ArrivalMs:   j.ArrivalMs,
			StartMs:     *j.StartMs,
			FinishMs:    *j.FinishMs,
			WaitingMs:   waiting,
			ExecutionMs: execution,
			ResponseMs:  response,
			Slowdown:    float64(response) / float64(denom),
			Slices:      j.Slices,
			Preemptions: j.Preemptions,
			CPUPercent:  j.CPUPercent,
			MemoryMB:    j.MemoryMB,
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, k int) bool { return rows[i].JobID < rows[k].JobID })
	return rows
}

// WithPriority stamps the priority policy's column onto already-built rows
// by job id.
func WithPriority(rows []JobRow, jobs map[string]*model.Job) []JobRow {
	for i := range rows {
		if j, ok := jobs[rows[i].JobID]; ok {
			p := j.Priority
			rows[i].Priority = &p
		}
	}
	return rows
}

func percentile(sorted []int64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}

// ComputeSummary aggregates rows into the one-row run summary. kind
// selects whether mean_execution_ms (non-preemptive) or
// avg_slices_per_job (RR) is populated.
func ComputeSummary(runID, datasetFile string, speedup float64, quantumMs *int64, kind model.Kind, rows []JobRow, totalSlotsAtEnd int) Summary {
	s := Summary{
		RunID:           runID,
		DatasetFile:     datasetFile,
		Speedup:         speedup,
		QuantumMs:       quantumMs,
		Jobs:            len(rows),
		TotalSlotsAtEnd: totalSlotsAtEnd,
	}
	if len(rows) == 0 {
		return s
	}

	responses := make([]int64, len(rows))
	var sumResponse, sumWait, sumExecution int64
	var sumSlices int
	for i, r := range rows {
		responses[i] = r.ResponseMs
		sumResponse += r.ResponseMs
		sumWait += r.WaitingMs
		sumExecution += r.ExecutionMs
		sumSlices += r.Slices
	}
	sort.Slice(responses, func(i, j int) bool { return responses[i] < responses[j] })

	n := float64(len(rows))
	s.MeanResponseMs = float64(sumResponse) / n
	s.MeanWaitMs = float64(sumWait) / n
	s.P50ResponseMs = percentile(responses, 50)
	s.P95ResponseMs = percentile(responses, 95)
	s.P99ResponseMs = percentile(responses, 99)

	if kind == model.RR {
		avg := float64(sumSlices) / n
		s.AvgSlicesPerJob = &avg
	} else {
		mean := float64(sumExecution) / n
		s.MeanExecutionMs = &mean
	}
	return s
}

// WriteJobsCSV writes the per-job detail artifact. Column set follows
// spec.md %6, including RR- and priority-only columns when applicable.
func WriteJobsCSV(path, runID string, quantumMs *int64, kind model.Kind, rows []JobRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"run_id"}
	if quantumMs != nil {
		header = append(header, "quantum_ms")
	}
	header = append(header, "job_id", "service_time_ms", "arrival_time_ms")
	if kind == model.RR {
		header = append(header, "first_start_time_ms")
	} else {
		header = append(header, "start_time_ms")
	}
	header = append(header, "finish_time_ms", "waiting_time_ms", "execution_time_ms", "response_time_ms", "slowdown")
	if kind == model.RR {
		header = append(header, "slices", "preemptions")
	}
	if kind == model.Priority {
		header = append(header, "priority")
	}
	header = append(header, "cpu_usage_percent", "memory_usage_mb")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		rec := []string{runID}
		if quantumMs != nil {
			rec = append(rec, fmt.Sprintf("%d", *quantumMs))
		}
		rec = append(rec,
			r.JobID,
			fmt.Sprintf("%d", r.ServiceMs),
			fmt.Sprintf("%d", r.ArrivalMs),
			fmt.Sprintf("%d", r.StartMs),
			fmt.Sprintf("%d", r.FinishMs),
			fmt.Sprintf("%d", r.WaitingMs),
			fmt.Sprintf("%d", r.ExecutionMs),
			fmt.Sprintf("%d", r.ResponseMs),
			fmt.Sprintf("%g", r.Slowdown),
		)
		if kind == model.RR {
			rec = append(rec, fmt.Sprintf("%d", r.Slices), fmt.Sprintf("%d", r.Preemptions))
		}
		if kind == model.Priority {
			p := int64(0)
			if r.Priority != nil {
				p = *r.Priority
			}
			rec = append(rec, fmt.Sprintf("%d", p))
		}
		rec = append(rec, floatOrEmpty(r.CPUPercent), floatOrEmpty(r.MemoryMB))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSummaryCSV writes the one-row summary artifact.
func WriteSummaryCSV(path string, s Summary, kind model.Kind) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"run_id", "dataset_file", "speedup"}
	if s.QuantumMs != nil {
		header = append(header, "quantum_ms")
	}
	header = append(header, "jobs", "mean_response_ms", "p50_response_ms", "p95_response_ms", "p99_response_ms", "mean_wait_ms")
	if kind == model.RR {
		header = append(header, "avg_slices_per_job")
	} else {
		header = append(header, "mean_execution_ms")
	}
	header = append(header, "total_slots_at_end")
	if err := w.Write(header); err != nil {
		return err
	}

	rec := []string{s.RunID, s.DatasetFile, fmt.Sprintf("%g", s.Speedup)}
	if s.QuantumMs != nil {
		rec = append(rec, fmt.Sprintf("%d", *s.QuantumMs))
	}
	rec = append(rec,
		fmt.Sprintf("%d", s.Jobs),
		fmt.Sprintf("%g", s.MeanResponseMs),
		fmt.Sprintf("%g", s.P50ResponseMs),
		fmt.Sprintf("%g", s.P95ResponseMs),
		fmt.Sprintf("%g", s.P99ResponseMs),
		fmt.Sprintf("%g", s.MeanWaitMs),
	)
	if kind == model.RR {
		v := 0.0
		if s.AvgSlicesPerJob != nil {
			v = *s.AvgSlicesPerJob
		}
		rec = append(rec, fmt.Sprintf("%g", v))
	} else {
		v := 0.0
		if s.MeanExecutionMs != nil {
			v = *s.MeanExecutionMs
		}
		rec = append(rec, fmt.Sprintf("%g", v))
	}
	rec = append(rec, fmt.Sprintf("%d", s.TotalSlotsAtEnd))
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%g", *f)
}
