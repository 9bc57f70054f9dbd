package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/heuristic"
	"github.com/brensch/gridsearch/levels"
	"github.com/brensch/gridsearch/rules"
	"github.com/brensch/gridsearch/search"
	"github.com/brensch/gridsearch/store"
)

const (
	problemMaze    = "maze"
	problemDungeon = "dungeon"

	// uninformed is the heuristic column for strategies that ignore it.
	uninformed = "none"
)

// Job is one search to run: a level, a problem built on it, a strategy and,
// for informed strategies, a heuristic.
type Job struct {
	Level     levels.Level
	Problem   string
	Strategy  search.Strategy
	Heuristic string
}

func (j Job) Key() string {
	return store.JobKey(j.Level.Name, j.Problem, j.Strategy.String(), j.Heuristic)
}

// buildJobs expands the level × problem × strategy × heuristic matrix.
// Heuristic names that do not apply to a problem are skipped for it.
func buildJobs(lvls []levels.Level, problems []string, strategies []search.Strategy, heuristics []string) ([]Job, error) {
	for _, p := range problems {
		if p != problemMaze && p != problemDungeon {
			return nil, fmt.Errorf("unknown problem %q (have %s, %s)", p, problemMaze, problemDungeon)
		}
	}
	for _, h := range heuristics {
		if !slices.Contains(heuristic.MazeNames(), h) && !slices.Contains(heuristic.DungeonNames(), h) {
			return nil, fmt.Errorf("unknown heuristic %q", h)
		}
	}

	var jobs []Job
	for _, lvl := range lvls {
		for _, problem := range problems {
			known := heuristic.MazeNames()
			if problem == problemDungeon {
				known = heuristic.DungeonNames()
			}
			for _, strategy := range strategies {
				if !strategy.Informed() {
					jobs = append(jobs, Job{Level: lvl, Problem: problem, Strategy: strategy, Heuristic: uninformed})
					continue
				}
				for _, h := range heuristics {
					if !slices.Contains(known, h) {
						continue
					}
					jobs = append(jobs, Job{Level: lvl, Problem: problem, Strategy: strategy, Heuristic: h})
				}
			}
		}
	}
	return jobs, nil
}

// pendingJobs drops jobs whose key is already in the written log.
func pendingJobs(jobs []Job, written *store.WrittenLog) []Job {
	out := jobs[:0:0]
	for _, j := range jobs {
		if !written.Has(j.Key()) {
			out = append(out, j)
		}
	}
	return out
}

// runJob builds a fresh problem for the job, so concurrent jobs never share
// a heuristic cache, and runs the search.
func runJob(j Job, opts ...search.Option) (store.RunRow, error) {
	var res search.Result[game.Direction]
	l := j.Level.Layout
	name := j.Heuristic
	if name == uninformed {
		name = "zero"
	}

	switch j.Problem {
	case problemMaze:
		h, err := heuristic.ForMaze(name)
		if err != nil {
			return store.RunRow{}, err
		}
		p := rules.NewMazeProblem(l)
		res = search.Run(j.Strategy, p, p.InitialState(), h, opts...)
	case problemDungeon:
		h, err := heuristic.ForDungeon(name)
		if err != nil {
			return store.RunRow{}, err
		}
		p := rules.NewDungeonProblem(l)
		res = search.Run(j.Strategy, p, p.InitialState(), h, opts...)
	default:
		return store.RunRow{}, fmt.Errorf("unknown problem %q", j.Problem)
	}

	row := store.RunRow{
		RunID:     store.NewRunID(),
		Level:     j.Level.Name,
		Problem:   j.Problem,
		Strategy:  j.Strategy.String(),
		Heuristic: j.Heuristic,
		Status:    res.Status.String(),
		Solved:    res.Solved(),
		Expanded:  int64(res.Expanded),
		Generated: int64(res.Generated),
		ElapsedUS: res.Elapsed.Microseconds(),
		Width:     l.Width,
		Height:    l.Height,
		Coins:     int32(len(l.Coins)),
		StartedNS: time.Now().Add(-res.Elapsed).UnixNano(),
	}
	if res.Solved() {
		row.Cost = res.Cost
		row.PathLen = int32(len(res.Path))
		row.Path = game.FormatPath(res.Path)
	}
	return row, nil
}

func parseStrategies(names []string) ([]search.Strategy, error) {
	out := make([]search.Strategy, 0, len(names))
	for _, n := range names {
		s, err := search.ParseStrategy(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
