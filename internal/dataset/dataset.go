// Package dataset loads the workload CSV a run is admitted against.
//
// Grounded on the original Python scheduler's pandas-based load_jobs: read
// the header, validate the columns the active policy requires, default
// optional columns explicitly, and reject the whole file on any row-level
// type error rather than skip-and-continue. No CSV/dataframe library
// appears anywhere in the retrieved pack, so this is implemented on
// encoding/csv — see DESIGN.md for the stdlib justification.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/distsched/distsched/internal/model"
)

// Row is one parsed dataset record, in the file's original row order. Row
// order matters: it is the FIFO tie-break for jobs arriving at the same
// instant (spec.md %4.2.3).
type Row struct {
	JobID      string
	ServiceMs  int64
	ArrivalMs  int64
	Priority   int64
	HasPriority bool
}

// Load parses path and validates it against the columns kind requires.
// arrival_time_ms defaults to 0 when the column is absent; priority
// defaults to 1 when absent and kind is not model.Priority, and is
// required when kind is model.Priority.
func Load(path string, kind model.Kind) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset not found: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // extra columns are ignored, not an error

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset is empty or unreadable: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	idxJobID, ok := col["job_id"]
	if !ok {
		return nil, fmt.Errorf("dataset must contain column job_id")
	}
	idxService, ok := col["service_time_ms"]
	if !ok {
		return nil, fmt.Errorf("dataset must contain column service_time_ms")
	}
	idxArrival, hasArrival := col["arrival_time_ms"]
	idxPriority, hasPriority := col["priority"]
	if kind == model.Priority && !hasPriority {
		return nil, fmt.Errorf("dataset must contain column priority for the priority policy")
	}

	var rows []Row
	seen := make(map[string]bool)
	rowNum := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset row %d: %w", rowNum, err)
		}
		rowNum++

		jobID := field(rec, idxJobID)
		if jobID == "" {
			return nil, fmt.Errorf("dataset row %d: empty job_id", rowNum)
		}
		if seen[jobID] {
			return nil, fmt.Errorf("dataset row %d: duplicate job_id %q", rowNum, jobID)
		}
		seen[jobID] = true

		service, err := strconv.ParseInt(field(rec, idxService), 10, 64)
		if err != nil || service <= 0 {
			return nil, fmt.Errorf("dataset row %d: service_time_ms must be a positive integer", rowNum)
		}

		var arrival int64
		if hasArrival {
			arrival, err = strconv.ParseInt(field(rec, idxArrival), 10, 64)
			if err != nil || arrival < 0 {
				return nil, fmt.Errorf("dataset row %d: arrival_time_ms must be a non-negative integer", rowNum)
			}
		}

		row := Row{JobID: jobID, ServiceMs: service, ArrivalMs: arrival}
		if hasPriority {
			p, err := strconv.ParseInt(field(rec, idxPriority), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset row %d: priority must be an integer", rowNum)
			}
			row.Priority = p
			row.HasPriority = true
		} else {
			row.Priority = 1
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset has no data rows")
	}

	return rows, nil
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}
