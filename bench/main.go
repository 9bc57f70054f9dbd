// Command bench runs every strategy and heuristic over a set of levels and
// records the results as parquet batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/heuristic"
	"github.com/brensch/gridsearch/levels"
	"github.com/brensch/gridsearch/logging"
	"github.com/brensch/gridsearch/search"
	"github.com/brensch/gridsearch/store"
)

func main() {
	levelDir := flag.String("levels", getEnvOrDefault("LEVELS_DIR", "levels"), "Directory of level .txt files (empty to skip)")
	indexURL := flag.String("index", getEnvOrDefault("LEVEL_INDEX", ""), "HTML index page linking level .txt files to download")
	generate := flag.Int("generate", getEnvIntOrDefault("GENERATE", 0), "Number of random levels to add")
	genWidth := flag.Int("gen-width", getEnvIntOrDefault("GEN_WIDTH", int(game.DefaultGenerateSettings.Width)), "Width of generated levels")
	genHeight := flag.Int("gen-height", getEnvIntOrDefault("GEN_HEIGHT", int(game.DefaultGenerateSettings.Height)), "Height of generated levels")
	genCoins := flag.Int("gen-coins", getEnvIntOrDefault("GEN_COINS", game.DefaultGenerateSettings.Coins), "Coins per generated level")
	genWalls := flag.Int("gen-walls", getEnvIntOrDefault("GEN_WALLS", game.DefaultGenerateSettings.WallChance), "Wall percentage of generated levels")
	saveGenerated := flag.String("save-generated", getEnvOrDefault("SAVE_GENERATED", ""), "Write generated levels into this directory")

	problems := flag.String("problems", getEnvOrDefault("PROBLEMS", "maze,dungeon"), "Comma separated problems: maze, dungeon")
	strategies := flag.String("strategies", getEnvOrDefault("STRATEGIES", "bfs,dfs,ucs,astar,gbfs"), "Comma separated strategies")
	heuristics := flag.String("heuristics", getEnvOrDefault("HEURISTICS", "manhattan,exit,weak,multigoal,multigoal-exit"), "Comma separated heuristics for informed strategies; known: "+strings.Join(knownHeuristics(), ", "))
	workers := flag.Int("workers", getEnvIntOrDefault("WORKERS", runtime.NumCPU()), "Number of concurrent searches")
	maxExpansions := flag.Int("max-expansions", getEnvIntOrDefault("MAX_EXPANSIONS", 2_000_000), "Per-search expansion budget (0 = unbounded)")
	timeLimit := flag.Duration("time-limit", getEnvDurationOrDefault("TIME_LIMIT", 30*time.Second), "Per-search time budget (0 = unbounded)")

	outDir := flag.String("out-dir", getEnvOrDefault("OUT_DIR", "data/runs"), "Directory to write batch .parquet files")
	logPath := flag.String("log-path", getEnvOrDefault("WRITTEN_LOG", "data/written_runs.log"), "Append-only log of job keys already written")
	flushRows := flag.Int("flush-rows", getEnvIntOrDefault("FLUSH_ROWS", 500), "Flush when buffered rows reaches this count")

	useTUI := flag.Bool("tui", getEnvBoolOrDefault("TUI", false), "Show a live terminal UI")
	summary := flag.Bool("summary", getEnvBoolOrDefault("SUMMARY", true), "Print a DuckDB summary of all stored runs when done")
	logLevel := flag.String("log-level", getEnvOrDefault("LOG_LEVEL", "info"), "debug, info, warn or error")
	logFile := flag.String("log-file", getEnvOrDefault("LOG_FILE", ""), "Write logs here instead of stderr (defaults to bench.log with -tui)")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	var logOut io.Writer = os.Stderr
	if *logFile == "" && *useTUI {
		*logFile = "bench.log"
	}
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Error opening log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(logging.New(logOut, level, false))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lvls, err := loadLevels(ctx, *levelDir, *indexURL)
	if err != nil {
		log.Fatalf("Failed to load levels: %v", err)
	}
	settings := game.GenerateSettings{Width: int32(*genWidth), Height: int32(*genHeight), WallChance: *genWalls, Coins: *genCoins}
	generated, err := generateLevels(*generate, settings)
	if err != nil {
		log.Fatalf("Failed to generate levels: %v", err)
	}
	if *saveGenerated != "" {
		for _, lvl := range generated {
			if _, err := levels.Save(*saveGenerated, lvl); err != nil {
				log.Fatalf("Failed to save level %s: %v", lvl.Name, err)
			}
		}
	}
	lvls = append(lvls, generated...)
	if len(lvls) == 0 {
		log.Fatalf("No levels: pass -levels, -index or -generate")
	}

	strats, err := parseStrategies(splitList(*strategies))
	if err != nil {
		log.Fatalf("Invalid strategies: %v", err)
	}
	jobs, err := buildJobs(lvls, splitList(*problems), strats, splitList(*heuristics))
	if err != nil {
		log.Fatalf("Invalid job matrix: %v", err)
	}

	written, err := store.OpenWrittenLog(*logPath)
	if err != nil {
		log.Fatalf("Failed to open written log: %v", err)
	}
	defer written.Close()
	pending := pendingJobs(jobs, written)

	log.Printf("Starting bench")
	log.Printf("  Levels: %d", len(lvls))
	log.Printf("  Jobs: %d (%d already written)", len(jobs), len(jobs)-len(pending))
	log.Printf("  Workers: %d", *workers)
	log.Printf("  Budget: %d expansions, %s", *maxExpansions, *timeLimit)
	log.Printf("  Out Dir: %s", *outDir)

	opts := []search.Option{search.WithMaxExpansions(*maxExpansions), search.WithTimeLimit(*timeLimit)}
	rows := make(chan store.RunRow, (*workers)*4)
	updates := make(chan store.RunRow, (*workers)*4)

	writerDone := make(chan int)
	go func() {
		writerDone <- parquetWriterLoop(*outDir, *flushRows, rows, written)
	}()

	runDone := make(chan error, 1)
	go func() {
		err := runJobs(ctx, pending, *workers, opts, func(row store.RunRow) {
			rows <- row
			// Drop UI updates rather than stall the workers.
			select {
			case updates <- row:
			default:
			}
		})
		close(rows)
		close(updates)
		runDone <- err
	}()

	if *useTUI {
		p := tea.NewProgram(initialModel(len(pending), updates), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			slog.Warn("tui exited", "err", err)
		}
		// q in the UI stops the run as well.
		stop()
	} else {
		logProgress(ctx, len(pending), runDone)
	}

	runErr := <-runDone
	batches := <-writerDone
	if runErr != nil {
		log.Printf("Run stopped early: %v", runErr)
	}
	log.Printf("Bench complete: runs=%d solved=%d expanded=%d batches=%d", totalRuns.Load(), totalSolved.Load(), totalExpanded.Load(), batches)

	if *summary {
		if err := printSummary(context.Background(), os.Stdout, *outDir); err != nil {
			log.Printf("Summary failed: %v", err)
		}
	}
}

// logProgress prints a status line every second until runDone fires. The
// error is put back for the caller.
func logProgress(ctx context.Context, total int, runDone chan error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case err := <-runDone:
			runDone <- err
			return
		case <-ctx.Done():
			log.Printf("Shutdown requested; waiting for running searches to finish...")
			err := <-runDone
			runDone <- err
			return
		case <-ticker.C:
			runs := totalRuns.Load()
			perSec := float64(runs) / time.Since(start).Seconds()
			log.Printf("Progress: %d/%d runs, solved=%d, runs/s=%.2f", runs, total, totalSolved.Load(), perSec)
		}
	}
}

func loadLevels(ctx context.Context, dir, indexURL string) ([]levels.Level, error) {
	var out []levels.Level
	if dir != "" {
		if _, err := os.Stat(dir); err == nil {
			lvls, err := levels.LoadDir(dir)
			if err != nil {
				return nil, err
			}
			out = append(out, lvls...)
		} else {
			log.Printf("Level dir %s not found; skipping", dir)
		}
	}
	if indexURL != "" {
		lvls, err := levels.NewDiscoverer(indexURL).FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, lvls...)
	}
	return out, nil
}

func generateLevels(n int, settings game.GenerateSettings) ([]levels.Level, error) {
	out := make([]levels.Level, 0, max(n, 0))
	for i := 0; i < n; i++ {
		l, err := game.Generate(nil, settings, uint64(i))
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("gen-%dx%d-%03d", settings.Width, settings.Height, i)
		out = append(out, levels.Level{Name: name, Layout: l})
	}
	return out, nil
}

func printSummary(ctx context.Context, w io.Writer, outDir string) error {
	results := store.OpenResults([]string{outDir}, time.Minute)
	defer results.Close()

	rows, err := results.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%-8s %-6s %-15s %6s %6s %10s %14s %12s\n", "problem", "strat", "heuristic", "runs", "solved", "avg cost", "avg expanded", "avg ms")
	for _, r := range rows {
		fmt.Fprintf(w, "%-8s %-6s %-15s %6d %6d %10.2f %14.1f %12.3f\n",
			r.Problem, r.Strategy, r.Heuristic, r.Runs, r.Solved, r.AvgCost, r.AvgExpanded, r.AvgMicros/1000)
	}
	return nil
}

// knownHeuristics lists every heuristic name across problems.
func knownHeuristics() []string {
	names := append(heuristic.MazeNames(), heuristic.DungeonNames()...)
	slices.Sort(names)
	return slices.Compact(names)
}
