package bst

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job is one bibliography to format.
type Job struct {
	Name    string
	Program []Command
	Options []Option
}

// FormatAll formats every job, each in its own session, running at most
// limit at once (no limit when limit <= 0). Results come back in job
// order. The first failure cancels the jobs still running and is returned.
func FormatAll(ctx context.Context, limit int, jobs ...Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, job := range jobs {
		eg.Go(func() error {
			res, err := Format(ctx, job.Program, job.Options...)
			res.Name = job.Name
			results[i] = res
			if err != nil {
				return fmt.Errorf("%v: %w", job.Name, err)
			}
			return nil
		})
	}
	return results, eg.Wait()
}
