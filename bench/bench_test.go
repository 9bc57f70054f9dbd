package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/levels"
	"github.com/brensch/gridsearch/search"
	"github.com/brensch/gridsearch/store"
)

func mustLevel(t *testing.T, name, text string) levels.Level {
	t.Helper()
	lvl, err := levels.Parse(name, strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return lvl
}

func testLevels(t *testing.T) []levels.Level {
	return []levels.Level{
		mustLevel(t, "line", "@.$.E\n"),
		mustLevel(t, "room", `
#######
#@.$..#
#..#..#
#$...E#
#######
`),
	}
}

func TestBuildJobs(t *testing.T) {
	jobs, err := buildJobs(testLevels(t), []string{problemMaze, problemDungeon}, search.Strategies, []string{"manhattan", "multigoal", "zero"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Per level and problem: bfs, dfs, ucs once each plus astar and gbfs with
	// the two heuristics that apply.
	if len(jobs) != 2*2*(3+2*2) {
		t.Fatalf("got %d jobs", len(jobs))
	}

	keys := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if keys[j.Key()] {
			t.Fatalf("duplicate job %s", j.Key())
		}
		keys[j.Key()] = true
		if j.Problem == problemMaze && j.Heuristic == "multigoal" {
			t.Fatalf("dungeon heuristic assigned to maze: %s", j.Key())
		}
		if !j.Strategy.Informed() && j.Heuristic != uninformed {
			t.Fatalf("uninformed job with heuristic: %s", j.Key())
		}
	}

	if _, err := buildJobs(testLevels(t), []string{"sokoban"}, search.Strategies, nil); err == nil {
		t.Fatalf("expected unknown problem error")
	}
	if _, err := buildJobs(testLevels(t), []string{problemMaze}, search.Strategies, []string{"psychic"}); err == nil {
		t.Fatalf("expected unknown heuristic error")
	}
}

func TestRunJob(t *testing.T) {
	lvl := mustLevel(t, "line", "@.$.E\n")

	row, err := runJob(Job{Level: lvl, Problem: problemDungeon, Strategy: search.StrategyAStar, Heuristic: "multigoal-exit"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !row.Solved || row.Status != "solved" || row.Cost != 4 || row.Path != "RRRR" || row.PathLen != 4 {
		t.Fatalf("row %+v", row)
	}
	if row.Coins != 1 || row.Width != 5 || row.Height != 1 || row.RunID == "" {
		t.Fatalf("row metadata %+v", row)
	}

	row, err = runJob(Job{Level: lvl, Problem: problemMaze, Strategy: search.StrategyBreadthFirst, Heuristic: uninformed}, search.WithMaxExpansions(2))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if row.Solved || row.Status != "budget_exceeded" || row.Path != "" || row.Expanded != 2 {
		t.Fatalf("budget row %+v", row)
	}

	if _, err := runJob(Job{Level: lvl, Problem: problemMaze, Strategy: search.StrategyAStar, Heuristic: "multigoal"}); err == nil {
		t.Fatalf("expected error for a dungeon heuristic on a maze")
	}
}

func TestRunJobsAndWriter(t *testing.T) {
	dir := t.TempDir()
	written, err := store.OpenWrittenLog(filepath.Join(dir, "written.log"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer written.Close()

	jobs, err := buildJobs(testLevels(t), []string{problemMaze, problemDungeon}, search.Strategies, []string{"exit", "multigoal-exit"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	rows := make(chan store.RunRow)
	done := make(chan int)
	outDir := filepath.Join(dir, "runs")
	go func() { done <- parquetWriterLoop(outDir, 7, rows, written) }()

	err = runJobs(context.Background(), jobs, 3, nil, func(row store.RunRow) { rows <- row })
	close(rows)
	batches := <-done
	if err != nil {
		t.Fatalf("run jobs: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(outDir, "*.parquet"))
	if len(files) != batches || batches != (len(jobs)+6)/7 {
		t.Fatalf("%d files, %d batches for %d jobs", len(files), batches, len(jobs))
	}
	total := 0
	for _, f := range files {
		got, err := store.ReadRows(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		for _, r := range got {
			if !r.Solved && r.Strategy != "dfs" {
				t.Errorf("%s unsolved: %s", r.Key(), r.Status)
			}
			if r.BatchID == "" {
				t.Errorf("%s has no batch id", r.Key())
			}
		}
		total += len(got)
	}
	if total != len(jobs) {
		t.Fatalf("stored %d rows for %d jobs", total, len(jobs))
	}
	if left := pendingJobs(jobs, written); len(left) != 0 {
		t.Fatalf("%d jobs still pending after a full run", len(left))
	}

	var buf bytes.Buffer
	if err := printSummary(context.Background(), &buf, outDir); err != nil {
		t.Fatalf("summary: %v", err)
	}
	t.Logf("summary:\n%s", buf.String())
	if !strings.Contains(buf.String(), "multigoal-exit") {
		t.Fatalf("summary missing heuristic rows")
	}
}

func TestRunJobs_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs, _ := buildJobs(testLevels(t), []string{problemMaze}, search.Strategies, []string{"exit"})

	emitted := 0
	err := runJobs(ctx, jobs, 2, nil, func(store.RunRow) { emitted++ })
	if err == nil || emitted != 0 {
		t.Fatalf("err %v emitted %d", err, emitted)
	}
}

func TestGenerateLevels(t *testing.T) {
	lvls, err := generateLevels(3, game.GenerateSettings{Width: 6, Height: 5, WallChance: 20, Coins: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(lvls) != 3 || lvls[0].Name != "gen-6x5-000" {
		t.Fatalf("levels %+v", lvls)
	}
	if lvls[0].Layout.String() == lvls[1].Layout.String() && lvls[1].Layout.String() == lvls[2].Layout.String() {
		t.Fatalf("generated levels are all identical")
	}
}

func TestLoadLevels(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "line.txt"), []byte("@.$.E\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lvls, err := loadLevels(context.Background(), dir, "")
	if err != nil || len(lvls) != 1 {
		t.Fatalf("levels %v err %v", lvls, err)
	}
	lvls, err = loadLevels(context.Background(), filepath.Join(dir, "missing"), "")
	if err != nil || len(lvls) != 0 {
		t.Fatalf("missing dir: levels %v err %v", lvls, err)
	}
}

func TestModel(t *testing.T) {
	updates := make(chan store.RunRow)
	var m = initialModel(3, updates)

	next, _ := m.Update(store.RunRow{Level: "line", Problem: problemMaze, Strategy: "bfs", Heuristic: uninformed, Status: "solved", Solved: true, Cost: 4, Expanded: 5})
	m = next.(model)
	next, _ = m.Update(store.RunRow{Level: "room", Problem: problemMaze, Strategy: "bfs", Heuristic: uninformed, Status: "no_solution", Expanded: 9})
	m = next.(model)

	if m.done != 2 || m.solved != 1 {
		t.Fatalf("done %d solved %d", m.done, m.solved)
	}
	st := m.byStrategy["bfs/"+uninformed]
	if st == nil || st.runs != 2 || st.expanded != 14 {
		t.Fatalf("stats %+v", st)
	}

	next, cmd := m.Update(doneMsg{})
	m = next.(model)
	if !m.finished || cmd == nil {
		t.Fatalf("done message should finish and quit")
	}
	view := m.View()
	for _, want := range []string{"2/3", "bfs/none", "All runs finished."} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRunJobs_CleanRunReturnsNil(t *testing.T) {
	jobs, err := buildJobs(testLevels(t), []string{problemMaze}, []search.Strategy{search.StrategyBreadthFirst}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var emitted atomic.Int64
	if err := runJobs(context.Background(), jobs, 4, nil, func(store.RunRow) { emitted.Add(1) }); err != nil {
		t.Fatalf("clean run reported %v", err)
	}
	if int(emitted.Load()) != len(jobs) {
		t.Fatalf("emitted %d rows for %d jobs", emitted.Load(), len(jobs))
	}
}
