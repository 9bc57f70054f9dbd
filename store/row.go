// Package store persists benchmark results as Parquet batches and reads them
// back through DuckDB.
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRow is the outcome of one search over one level.
//
// Path is the move sequence in compact form ("RRUL"), empty unless the search
// was solved. Elapsed is stored in microseconds.
type RunRow struct {
	RunID     string  `parquet:"run_id" json:"run_id"`
	BatchID   string  `parquet:"batch_id,dict" json:"batch_id"`
	Level     string  `parquet:"level,dict" json:"level"`
	Problem   string  `parquet:"problem,dict" json:"problem"`
	Strategy  string  `parquet:"strategy,dict" json:"strategy"`
	Heuristic string  `parquet:"heuristic,dict" json:"heuristic"`
	Status    string  `parquet:"status,dict" json:"status"`
	Solved    bool    `parquet:"solved" json:"solved"`
	Cost      float64 `parquet:"cost" json:"cost"`
	PathLen   int32   `parquet:"path_len" json:"path_len"`
	Path      string  `parquet:"path,optional,zstd" json:"path"`
	Expanded  int64   `parquet:"expanded" json:"expanded"`
	Generated int64   `parquet:"generated" json:"generated"`
	ElapsedUS int64   `parquet:"elapsed_us" json:"elapsed_us"`
	Width     int32   `parquet:"width" json:"width"`
	Height    int32   `parquet:"height" json:"height"`
	Coins     int32   `parquet:"coins" json:"coins"`
	StartedNS int64   `parquet:"started_ns" json:"started_ns"`
}

// Key identifies the (level, problem, strategy, heuristic) combination a row
// belongs to. The written log dedupes on it so interrupted benchmarks resume.
func (r RunRow) Key() string {
	return JobKey(r.Level, r.Problem, r.Strategy, r.Heuristic)
}

func JobKey(level, problem, strategy, heuristic string) string {
	return fmt.Sprintf("%s|%s|%s|%s", level, problem, strategy, heuristic)
}

// Elapsed converts ElapsedUS back to a duration.
func (r RunRow) Elapsed() time.Duration {
	return time.Duration(r.ElapsedUS) * time.Microsecond
}

// NewRunID returns a fresh random identifier for a row or batch.
func NewRunID() string {
	return uuid.NewString()
}
