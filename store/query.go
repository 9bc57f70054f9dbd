package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// SummaryRow aggregates every run of one (problem, strategy, heuristic).
type SummaryRow struct {
	Problem     string  `json:"problem"`
	Strategy    string  `json:"strategy"`
	Heuristic   string  `json:"heuristic"`
	Runs        int64   `json:"runs"`
	Solved      int64   `json:"solved"`
	AvgCost     float64 `json:"avg_cost"`
	AvgExpanded float64 `json:"avg_expanded"`
	AvgMicros   float64 `json:"avg_elapsed_us"`
}

// Results is a cached DuckDB view over every batch file under a set of
// roots. The connection is reopened after refreshRate so new batches show up.
type Results struct {
	roots       []string
	refreshRate time.Duration

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time
}

func OpenResults(roots []string, refreshRate time.Duration) *Results {
	return &Results{roots: roots, refreshRate: refreshRate}
}

// Get returns the cached connection, refreshing it when stale.
func (r *Results) Get() (*sql.DB, error) {
	r.mu.RLock()
	if r.db != nil && time.Since(r.lastRefresh) < r.refreshRate {
		db := r.db
		r.mu.RUnlock()
		return db, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil && time.Since(r.lastRefresh) < r.refreshRate {
		return r.db, nil
	}
	return r.refreshLocked()
}

// Refresh forces the view to be rebuilt.
func (r *Results) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.refreshLocked()
	return err
}

func (r *Results) refreshLocked() (*sql.DB, error) {
	start := time.Now()
	db, err := openRunsView(r.roots)
	if err != nil {
		return nil, err
	}
	if r.db != nil {
		_ = r.db.Close()
	}
	r.db = db
	r.lastRefresh = time.Now()
	slog.Debug("results view refreshed", "roots", len(r.roots), "took", time.Since(start))
	return r.db, nil
}

func (r *Results) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// Summary groups all runs by problem, strategy and heuristic.
func (r *Results) Summary(ctx context.Context) ([]SummaryRow, error) {
	db, err := r.Get()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT
			problem,
			strategy,
			heuristic,
			COUNT(*)::BIGINT AS runs,
			SUM(CASE WHEN solved THEN 1 ELSE 0 END)::BIGINT AS solved,
			COALESCE(AVG(CASE WHEN solved THEN cost END), 0)::DOUBLE AS avg_cost,
			COALESCE(AVG(expanded), 0)::DOUBLE AS avg_expanded,
			COALESCE(AVG(elapsed_us), 0)::DOUBLE AS avg_elapsed_us
		FROM runs
		GROUP BY problem, strategy, heuristic
		ORDER BY problem, strategy, heuristic`)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var s SummaryRow
		if err := rows.Scan(&s.Problem, &s.Strategy, &s.Heuristic, &s.Runs, &s.Solved, &s.AvgCost, &s.AvgExpanded, &s.AvgMicros); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LevelRuns returns every stored run for one level, cheapest solved first.
func (r *Results) LevelRuns(ctx context.Context, level string) ([]RunRow, error) {
	db, err := r.Get()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT
			run_id, level, problem, strategy, heuristic, status, solved,
			cost, path_len, COALESCE(path, ''), expanded, generated, elapsed_us
		FROM runs
		WHERE level = ?
		ORDER BY solved DESC, cost ASC, expanded ASC`, level)
	if err != nil {
		return nil, fmt.Errorf("query level runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.RunID, &row.Level, &row.Problem, &row.Strategy, &row.Heuristic, &row.Status, &row.Solved,
			&row.Cost, &row.PathLen, &row.Path, &row.Expanded, &row.Generated, &row.ElapsedUS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func openRunsView(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" || !hasBatches(root) {
			continue
		}
		// Staging files end in .tmp, so the glob only sees finished batches.
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}

	query := `CREATE OR REPLACE VIEW runs AS
		SELECT * FROM (
			SELECT
				NULL::VARCHAR AS run_id, NULL::VARCHAR AS batch_id, NULL::VARCHAR AS level,
				NULL::VARCHAR AS problem, NULL::VARCHAR AS strategy, NULL::VARCHAR AS heuristic,
				NULL::VARCHAR AS status, NULL::BOOLEAN AS solved, NULL::DOUBLE AS cost,
				NULL::INTEGER AS path_len, NULL::VARCHAR AS path, NULL::BIGINT AS expanded,
				NULL::BIGINT AS generated, NULL::BIGINT AS elapsed_us, NULL::INTEGER AS width,
				NULL::INTEGER AS height, NULL::INTEGER AS coins, NULL::BIGINT AS started_ns,
				NULL::VARCHAR AS filename
		) WHERE 1=0`
	if len(globs) > 0 {
		query = `CREATE OR REPLACE VIEW runs AS
			SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)`
	}
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs view: %w", err)
	}
	return db, nil
}

var errFound = errors.New("found")

// hasBatches reports whether root holds at least one finished batch file.
// read_parquet fails on a glob that matches nothing.
func hasBatches(root string) bool {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			return errFound
		}
		return nil
	})
	return errors.Is(err, errFound)
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
