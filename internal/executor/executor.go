// Package executor runs a work function over a batch of inputs with a fixed
// worker budget.
//
// Results are kept per input index so callers can reconcile which items
// succeeded after a partial run. Cancelling the parent context stops
// dispatch; items already running see a cancelled context and are reported
// as interrupted, items never started stay pending.
package executor

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"rtk/internal/services"
)

// Outcome classifies what happened to one input.
type Outcome int

const (
	// Pending means the input was never dispatched.
	Pending Outcome = iota
	Succeeded
	Failed
	Interrupted
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result pairs an input with the value or error its work produced.
type Result[T, R any] struct {
	Input   T
	Value   R
	Err     error
	Outcome Outcome
}

// Progress observes completed items. *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(n int) error
}

type options struct {
	workers   int
	abort     func(error) bool
	progress  Progress
	onOutcome func(index int, outcome Outcome, err error)
}

// Option configures Run.
type Option func(*options)

// WithWorkers sets the number of concurrent workers (minimum 1).
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithAbort installs a predicate deciding whether a failed item stops the
// whole batch.
func WithAbort(fn func(error) bool) Option {
	return func(o *options) {
		if fn != nil {
			o.abort = fn
		}
	}
}

// WithProgress reports every finished item to p.
func WithProgress(p Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}

// WithOnOutcome observes each finished item. fn is called from worker
// goroutines and must be safe for concurrent use.
func WithOnOutcome(fn func(index int, outcome Outcome, err error)) Option {
	return func(o *options) {
		o.onOutcome = fn
	}
}

// Run applies work to every item using a bounded pool.
//
// It returns services.ErrAborted (wrapping the triggering failure) when the
// abort predicate trips, the parent context error when the run was
// interrupted, and nil otherwise. The result slice is always complete and
// indexed like items.
func Run[T, R any](ctx context.Context, items []T, work func(context.Context, T) (R, error), opts ...Option) ([]Result[T, R], error) {
	cfg := options{
		workers: 1,
		abort:   services.IsFatal,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	results := make([]Result[T, R], len(items))
	for i, item := range items {
		results[i].Input = item
	}
	if len(items) == 0 {
		return results, ctx.Err()
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.workers)

	var completed atomic.Int64
	finish := func(index int, outcome Outcome, err error) {
		completed.Add(1)
		if cfg.progress != nil {
			_ = cfg.progress.Add(1)
		}
		if cfg.onOutcome != nil {
			cfg.onOutcome(index, outcome, err)
		}
	}

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			value, err := work(gctx, item)
			res := &results[i]
			res.Value = value
			res.Err = err
			switch {
			case err == nil:
				res.Outcome = Succeeded
			case gctx.Err() != nil:
				res.Outcome = Interrupted
			default:
				res.Outcome = Failed
			}
			finish(i, res.Outcome, err)
			if res.Outcome == Failed && cfg.abort(err) {
				return err
			}
			return nil
		})
	}

	abortErr := group.Wait()
	if abortErr != nil {
		return results, services.Wrap(services.ErrAborted, "executor", "run", fmt.Sprintf("stopped after %d of %d items", completed.Load(), len(items)), abortErr)
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
