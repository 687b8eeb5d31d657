package pipeline

import (
	"context"

	"rtk/internal/logging"
	"rtk/internal/services"
	"rtk/internal/task"
)

// TaskStatus aggregates the completion state of one task over all batches.
type TaskStatus struct {
	Task   string
	Kind   string
	Inputs int
	Done   int
}

// Pending is the number of inputs still to process.
func (s TaskStatus) Pending() int { return s.Inputs - s.Done }

// Status checks every task of the chain against the filesystem without
// running any work. Inputs of chained tasks are the outputs their source
// task holds on disk right now.
func (r *Runner) Status(ctx context.Context) ([]TaskStatus, error) {
	batches, err := r.Batches()
	if err != nil {
		return nil, err
	}
	statuses := make([]TaskStatus, len(r.cfg.Tasks))
	for i, def := range r.cfg.Tasks {
		statuses[i] = TaskStatus{Task: def.Name, Kind: def.Kind}
	}

	for i, batch := range batches {
		batchCtx := services.WithBatch(ctx, i+1)
		logger := logging.WithContext(batchCtx, r.logger)
		index := 0
		err := r.walk(batchCtx, batch, logger, func(tk *task.Task) error {
			if _, err := tk.Check(batchCtx); err != nil {
				return err
			}
			refs := tk.Inputs()
			statuses[index].Inputs += len(refs)
			for _, ref := range refs {
				if tk.IsDone(ref) {
					statuses[index].Done++
				}
			}
			index++
			return nil
		})
		if err != nil {
			return statuses, err
		}
	}
	return statuses, nil
}
