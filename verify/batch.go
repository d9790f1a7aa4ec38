package verify

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome of one request in a batch.
type BatchItem struct {
	Request Request
	Outcome Outcome
	Err     error
}

// VerifyBatch verifies independent requests with at most concurrency lookups
// in flight (concurrency <= 0 means one). Results keep the input order; each
// item carries its own error, so one failure does not cancel the rest.
// Only cancellation of ctx stops the batch early.
func (v *Verifier) VerifyBatch(ctx context.Context, reqs []Request, concurrency int) ([]BatchItem, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	out := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = BatchItem{Request: req, Err: err}
				return err
			}
			o, err := v.Verify(gctx, req)
			out[i] = BatchItem{Request: req, Outcome: o, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
