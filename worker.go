package stastar

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Request is one independent search handed to PlanBatch.
type Request struct {
	Start State
	Goal  State
	Mask  ObstacleMask
}

// PlanBatch runs every request on its own search, at most the planner's
// worker count at a time. Results are index-aligned with requests.
// Cancelling ctx stops new searches from starting; searches already running
// finish first and the context error is returned.
func PlanBatch(ctx context.Context, planner *Planner, requests []Request) ([]Result, error) {
	results := make([]Result, len(requests))

	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(planner.workers)
	for i, request := range requests {
		i, request := i, request
		if groupContext.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupContext.Err(); err != nil {
				return err
			}
			results[i] = planner.Search(request.Start, request.Goal, request.Mask)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	planner.log.Debug().Int("requests", len(requests)).Int("workers", planner.workers).Msg("batch finished")
	return results, nil
}
