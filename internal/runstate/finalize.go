package runstate

import (
	"fmt"
	"path/filepath"

	"github.com/distsched/distsched/internal/model"
	"github.com/distsched/distsched/internal/results"
)

// finalizeLocked computes and writes the two CSV artifacts for a run that
// has just completed every job. Must be called with e.mu held. A CSV
// write failure is logged, not fatal: the run still reports done, just
// with an empty artifact path (spec.md %7).
func (e *Engine) finalizeLocked(run *RunState) {
	run.Done = true
	if e.cancelBG != nil {
		e.cancelBG()
	}

	rows := results.BuildJobRows(run.Jobs)
	if run.Kind == model.Priority {
		rows = results.WithPriority(rows, run.Jobs)
	}

	var quantumMs *int64
	if run.Kind == model.RR {
		q := run.QuantumMs
		quantumMs = &q
	}

	totalSlots := e.registry.TotalAliveSlots()
	summary := results.ComputeSummary(run.RunID, run.DatasetFile, run.Speedup, quantumMs, run.Kind, rows, totalSlots)
	run.Summary = &summary

	jobsPath := filepath.Join(e.resultsDir, fmt.Sprintf("results_jobs_%s.csv", run.RunID))
	if err := results.WriteJobsCSV(jobsPath, run.RunID, quantumMs, run.Kind, rows); err != nil {
		e.log.WithError(err).WithField("run_id", run.RunID).Error("jobs_csv_write_failed")
	} else {
		run.JobsCSV = jobsPath
	}

	runPath := filepath.Join(e.resultsDir, fmt.Sprintf("results_run_%s.csv", run.RunID))
	if err := results.WriteSummaryCSV(runPath, summary, run.Kind); err != nil {
		e.log.WithError(err).WithField("run_id", run.RunID).Error("summary_csv_write_failed")
	} else {
		run.RunCSV = runPath
	}

	e.log.WithFields(map[string]any{
		"run_id":    run.RunID,
		"jobs":      run.TotalJobs,
		"jobs_csv":  run.JobsCSV,
		"run_csv":   run.RunCSV,
	}).Info("run_finalized")
}
