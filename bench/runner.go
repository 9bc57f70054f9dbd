package main

import (
	"context"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/brensch/gridsearch/search"
	"github.com/brensch/gridsearch/store"
)

var (
	totalRuns     atomic.Int64
	totalSolved   atomic.Int64
	totalExpanded atomic.Int64
)

// runJobs runs every job with at most workers searches in flight and hands
// each finished row to emit. It stops early when ctx is cancelled; jobs that
// fail to start are logged and skipped.
func runJobs(ctx context.Context, jobs []Job, workers int, opts []search.Option, emit func(store.RunRow)) error {
	if workers <= 0 {
		workers = 1
	}
	// gctx is cancelled once Wait returns, so only the caller's ctx decides
	// whether the run stopped early.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			row, err := runJob(job, opts...)
			if err != nil {
				log.Printf("Job %s failed: %v", job.Key(), err)
				return nil
			}
			totalRuns.Add(1)
			totalExpanded.Add(row.Expanded)
			if row.Solved {
				totalSolved.Add(1)
			}
			emit(row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
