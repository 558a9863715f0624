package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsched/distsched/internal/model"
)

func finishedJob(id string, arrival, start, finish, service int64) *model.Job {
	s, f := start, finish
	return &model.Job{
		JobID:     id,
		ServiceMs: service,
		ArrivalMs: arrival,
		StartMs:   &s,
		FinishMs:  &f,
	}
}

func TestBuildJobRows_SkipsUnfinishedJobs(t *testing.T) {
	jobs := map[string]*model.Job{
		"done":      finishedJob("done", 0, 0, 100, 100),
		"unstarted": {JobID: "unstarted", ServiceMs: 50},
	}

	rows := BuildJobRows(jobs)

	require.Len(t, rows, 1)
	assert.Equal(t, "done", rows[0].JobID)
}

func TestBuildJobRows_ComputesWaitingExecutionResponse(t *testing.T) {
	jobs := map[string]*model.Job{
		"a": finishedJob("a", 10, 30, 80, 40),
	}

	rows := BuildJobRows(jobs)

	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, int64(20), r.WaitingMs)  // start - arrival
	assert.Equal(t, int64(50), r.ExecutionMs) // finish - start
	assert.Equal(t, int64(70), r.ResponseMs)  // finish - arrival
	assert.InDelta(t, 70.0/40.0, r.Slowdown, 1e-9)
}

func TestBuildJobRows_SortsByJobID(t *testing.T) {
	jobs := map[string]*model.Job{
		"c": finishedJob("c", 0, 0, 10, 10),
		"a": finishedJob("a", 0, 0, 10, 10),
		"b": finishedJob("b", 0, 0, 10, 10),
	}

	rows := BuildJobRows(jobs)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{rows[0].JobID, rows[1].JobID, rows[2].JobID})
}

func TestComputeSummary_EmptyRowsYieldsZeroValues(t *testing.T) {
	s := ComputeSummary("run1", "jobs.csv", 1.0, nil, model.FIFO, nil, 4)
	assert.Equal(t, 0, s.Jobs)
	assert.Equal(t, 0.0, s.MeanResponseMs)
}

func TestComputeSummary_RRPopulatesAvgSlicesNotMeanExecution(t *testing.T) {
	rows := []JobRow{
		{JobID: "a", ResponseMs: 100, WaitingMs: 10, ExecutionMs: 90, Slices: 3},
		{JobID: "b", ResponseMs: 200, WaitingMs: 20, ExecutionMs: 180, Slices: 5},
	}
	q := int64(50)

	s := ComputeSummary("run1", "jobs.csv", 1.0, &q, model.RR, rows, 2)

	require.NotNil(t, s.AvgSlicesPerJob)
	assert.Equal(t, 4.0, *s.AvgSlicesPerJob)
	assert.Nil(t, s.MeanExecutionMs)
	assert.Equal(t, 150.0, s.MeanResponseMs)
}

func TestComputeSummary_NonRRPopulatesMeanExecutionNotAvgSlices(t *testing.T) {
	rows := []JobRow{
		{JobID: "a", ResponseMs: 100, WaitingMs: 10, ExecutionMs: 90},
		{JobID: "b", ResponseMs: 200, WaitingMs: 20, ExecutionMs: 180},
	}

	s := ComputeSummary("run1", "jobs.csv", 1.0, nil, model.FIFO, rows, 2)

	require.NotNil(t, s.MeanExecutionMs)
	assert.Equal(t, 135.0, *s.MeanExecutionMs)
	assert.Nil(t, s.AvgSlicesPerJob)
}

func TestPercentile_SingleElement(t *testing.T) {
	assert.Equal(t, 42.0, percentile([]int64{42}, 95))
}

func TestPercentile_InterpolatesBetweenRanks(t *testing.T) {
	sorted := []int64{10, 20, 30, 40}
	assert.InDelta(t, 10.0, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 25.0, percentile(sorted, 50), 1e-9) // rank 1.5: halfway between 20 and 30
	assert.InDelta(t, 40.0, percentile(sorted, 100), 1e-9)
}

func TestWriteJobsCSVAndWriteSummaryCSV_RoundTripToDisk(t *testing.T) {
	dir := t.TempDir()
	jobsPath := filepath.Join(dir, "jobs.csv")
	runPath := filepath.Join(dir, "run.csv")

	rows := []JobRow{
		{JobID: "a", ServiceMs: 100, ArrivalMs: 0, StartMs: 0, FinishMs: 100, ResponseMs: 100, WaitingMs: 0, ExecutionMs: 100, Slowdown: 1},
	}
	summary := ComputeSummary("run1", "jobs.csv", 1.0, nil, model.FIFO, rows, 4)

	require.NoError(t, WriteJobsCSV(jobsPath, "run1", nil, model.FIFO, rows))
	require.NoError(t, WriteSummaryCSV(runPath, summary, model.FIFO))

	jobsBytes, err := os.ReadFile(jobsPath)
	require.NoError(t, err)
	assert.Contains(t, string(jobsBytes), "job_id")
	assert.Contains(t, string(jobsBytes), "a")

	runBytes, err := os.ReadFile(runPath)
	require.NoError(t, err)
	assert.Contains(t, string(runBytes), "run_id")
	assert.Contains(t, string(runBytes), "run1")
}
