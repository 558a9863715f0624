package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsched/distsched/internal/model"
)

func writeTempCSV(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MinimalFIFOColumns(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms\nj1,100\nj2,200\n")

	rows, err := Load(path, model.FIFO)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "j1", rows[0].JobID)
	assert.Equal(t, int64(100), rows[0].ServiceMs)
	assert.Equal(t, int64(0), rows[0].ArrivalMs)
}

func TestLoad_ArrivalDefaultsToZeroWhenColumnAbsent(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms\nj1,100\n")

	rows, err := Load(path, model.FIFO)

	require.NoError(t, err)
	assert.Equal(t, int64(0), rows[0].ArrivalMs)
}

func TestLoad_PriorityPolicyRequiresPriorityColumn(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms\nj1,100\n")

	_, err := Load(path, model.Priority)

	assert.Error(t, err)
}

func TestLoad_PriorityColumnParsed(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms,priority\nj1,100,3\n")

	rows, err := Load(path, model.Priority)

	require.NoError(t, err)
	assert.Equal(t, int64(3), rows[0].Priority)
	assert.True(t, rows[0].HasPriority)
}

func TestLoad_RejectsMissingRequiredColumn(t *testing.T) {
	path := writeTempCSV(t, "job_id\nj1\n")

	_, err := Load(path, model.FIFO)

	assert.Error(t, err)
}

func TestLoad_RejectsDuplicateJobID(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms\nj1,100\nj1,200\n")

	_, err := Load(path, model.FIFO)

	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveServiceTime(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms\nj1,0\n")

	_, err := Load(path, model.FIFO)

	assert.Error(t, err)
}

func TestLoad_RejectsNegativeArrival(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms,arrival_time_ms\nj1,100,-5\n")

	_, err := Load(path, model.FIFO)

	assert.Error(t, err)
}

func TestLoad_RejectsEmptyJobID(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms\n,100\n")

	_, err := Load(path, model.FIFO)

	assert.Error(t, err)
}

func TestLoad_RejectsFileWithNoDataRows(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms\n")

	_, err := Load(path, model.FIFO)

	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), model.FIFO)
	assert.Error(t, err)
}

func TestLoad_PreservesRowOrderForFIFOTieBreak(t *testing.T) {
	path := writeTempCSV(t, "job_id,service_time_ms\nc,10\na,10\nb,10\n")

	rows, err := Load(path, model.FIFO)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{rows[0].JobID, rows[1].JobID, rows[2].JobID})
}
