package astar

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent search for SearchAll.
type Job struct {
	Grid     *Grid
	Observer Observer
}

// SearchAll runs every job on a pool of WithWorkers goroutines. Each search is
// still single-threaded; only separate jobs run in parallel, so observers must
// not be shared between jobs unless they are safe for concurrent use.
// Results are in job order. The first error cancels the remaining jobs.
func SearchAll(ctx context.Context, jobs []Job, options ...Option) ([]Result, error) {
	searchOptions := applyOptions(options)
	results := make([]Result, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(searchOptions.NumberOfWorkers)
	for i, job := range jobs {
		group.Go(func() error {
			result, err := FindPath(groupCtx, job.Grid, job.Observer, options...)
			results[i] = result
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
