package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-chrom/chrom/species"
	"github.com/cwbudde/algo-chrom/chrom/trace"
)

// Job is one independent trace to analyse.
type Job struct {
	// ID identifies the job in results and logs, e.g. a file name or timestamp.
	ID       string
	Trace    trace.Trace
	Detector species.Detector
}

// JobResult pairs a job with its outcome. Exactly one of Result and Err is set.
type JobResult struct {
	ID     string
	Result *Result
	Err    error
}

// AnalyzeAll analyses jobs on a pool of workers and returns the outcomes in job
// order. workers <= 0 uses one worker per job.
//
// Jobs not started before ctx is done report ctx.Err(); a job already running
// completes.
func (a *Analyzer) AnalyzeAll(ctx context.Context, jobs []Job, workers int) []JobResult {
	results := make([]JobResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	if workers <= 0 || workers > len(jobs) {
		workers = len(jobs)
	}

	next := make(chan int, len(jobs))
	for i := range jobs {
		next <- i
	}
	close(next)

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for i := range next {
				job := jobs[i]
				results[i].ID = job.ID

				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}

				res, err := a.Analyze(job.Trace, job.Detector)
				if err != nil {
					a.log.Warn("analysis failed", zap.String("job", job.ID), zap.Error(err))
				}
				results[i].Result, results[i].Err = res, err
			}
		})
	}
	wg.Wait()

	return results
}
