package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"rtk/internal/command"
	"rtk/internal/executor"
	"rtk/internal/inputs"
	"rtk/internal/logging"
	"rtk/internal/services"
)

// ErrNoOutput reports work that finished without anything to write. It is
// not a failure: the item simply contributes no output.
var ErrNoOutput = errors.New("nothing to write")

// Variant is the kind-specific policy behind a Task.
type Variant interface {
	// Label names the work for progress display.
	Label() string
	// Done reports whether the output for ref is present and valid. It must
	// only read the filesystem.
	Done(ref inputs.Ref) bool
	// Work produces the output for ref.
	Work(ctx context.Context, ref inputs.Ref) error
	// Outputs lists the artifacts of a done ref.
	Outputs(ref inputs.Ref) ([]inputs.Ref, error)
}

// Recoverer is implemented by variants that must remove leftovers of work
// that did not complete, so a later check does not mistake them for output.
type Recoverer interface {
	Recover(ref inputs.Ref)
}

// ProgressBar receives per-item progress for one Process call.
type ProgressBar interface {
	executor.Progress
	Finish() error
}

// ProgressFunc creates a progress bar for total pending items.
type ProgressFunc func(label string, total int) ProgressBar

// Summary describes one Process call.
type Summary struct {
	Task        string
	Kind        string
	Total       int
	AlreadyDone int
	Pending     int
	Succeeded   int
	Failed      int
	// Empty counts items whose work produced nothing to write.
	Empty int
	// Unverified counts items whose work succeeded but whose output did not
	// pass the completion check afterwards.
	Unverified int
	// Interrupted counts items cut short or never started.
	Interrupted int
	NothingToDo bool
	Aborted     bool
}

// Task checks which inputs are already processed and processes the rest.
type Task struct {
	name     string
	kind     string
	variant  Variant
	refs     []inputs.Ref
	workers  int
	abort    func(error) bool
	logger   *slog.Logger
	progress ProgressFunc

	mu        sync.Mutex
	completed map[inputs.Ref]bool
}

// Option configures a Task.
type Option func(*Task)

// WithName sets the task name used in logs and summaries.
func WithName(name string) Option {
	return func(t *Task) {
		if name != "" {
			t.name = name
		}
	}
}

// WithWorkers sets the worker budget (minimum 1).
func WithWorkers(n int) Option {
	return func(t *Task) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithAbort replaces the predicate deciding whether a failed item stops the
// batch. The default stops only on storage and configuration failures.
func WithAbort(fn func(error) bool) Option {
	return func(t *Task) {
		if fn != nil {
			t.abort = fn
		}
	}
}

// WithFailFast stops the batch on the first failed item.
func WithFailFast() Option {
	return WithAbort(func(err error) bool { return !errors.Is(err, ErrNoOutput) })
}

// WithTolerance keeps going past item failures. Storage and configuration
// errors still stop the batch.
func WithTolerance() Option {
	return WithAbort(services.IsFatal)
}

// WithLogger sets the task logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Task) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithProgress installs a progress bar factory.
func WithProgress(fn ProgressFunc) Option {
	return func(t *Task) {
		t.progress = fn
	}
}

// New builds a task over refs. Duplicate refs are dropped so that no two
// workers ever target the same output.
func New(kind string, variant Variant, refs []inputs.Ref, opts ...Option) *Task {
	t := &Task{
		name:      kind,
		kind:      kind,
		variant:   variant,
		workers:   1,
		abort:     services.IsFatal,
		logger:    logging.NewNop(),
		completed: make(map[inputs.Ref]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	seen := make(map[inputs.Ref]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		t.refs = append(t.refs, ref)
	}
	t.logger = logging.NewComponentLogger(t.logger, "task")
	return t
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Kind returns the task kind.
func (t *Task) Kind() string { return t.kind }

// Inputs returns the deduplicated input set in order.
func (t *Task) Inputs() []inputs.Ref { return append([]inputs.Ref(nil), t.refs...) }

func (t *Task) scope(ctx context.Context) (context.Context, *slog.Logger) {
	ctx = services.WithKind(services.WithTask(ctx, t.name), t.kind)
	return ctx, logging.WithContext(ctx, t.logger)
}

// Check re-evaluates every input against the filesystem and replaces the
// completion map. It reports whether all inputs are done.
func (t *Task) Check(ctx context.Context) (bool, error) {
	ctx, logger := t.scope(ctx)
	logger.Info("checking prior processed documents",
		logging.String(logging.FieldEventType, "task_check"),
		logging.Int("inputs", len(t.refs)),
	)

	fresh := make(map[inputs.Ref]bool, len(t.refs))
	allDone := true
	doneCount := 0
	for _, ref := range t.refs {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		done := t.variant.Done(ref)
		fresh[ref] = done
		if done {
			doneCount++
		} else {
			allDone = false
		}
	}

	t.mu.Lock()
	t.completed = fresh
	t.mu.Unlock()

	logger.Debug("check complete",
		logging.Int("done", doneCount),
		logging.Int("pending", len(t.refs)-doneCount),
	)
	return allDone, nil
}

// IsDone reports the completion state recorded for ref by the last Check
// or Process call.
func (t *Task) IsDone(ref inputs.Ref) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed[ref]
}

func (t *Task) markDone(ref inputs.Ref) {
	t.mu.Lock()
	t.completed[ref] = true
	t.mu.Unlock()
}

func (t *Task) pending() []inputs.Ref {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []inputs.Ref
	for _, ref := range t.refs {
		if !t.completed[ref] {
			out = append(out, ref)
		}
	}
	return out
}

// Process checks the inputs and runs the work function over those not yet
// done. It returns services.ErrAborted when the failure policy stopped the
// batch and the context error when interrupted; leftovers of unfinished
// items are removed before returning.
func (t *Task) Process(ctx context.Context) (Summary, error) {
	summary := Summary{Task: t.name, Kind: t.kind, Total: len(t.refs)}
	if _, err := t.Check(ctx); err != nil {
		return summary, err
	}
	ctx, logger := t.scope(ctx)

	pending := t.pending()
	summary.Pending = len(pending)
	summary.AlreadyDone = summary.Total - summary.Pending
	if len(pending) == 0 {
		summary.NothingToDo = true
		logger.Info("nothing to process",
			logging.String(logging.FieldEventType, "task_skip"),
			logging.Int("inputs", summary.Total),
		)
		return summary, nil
	}

	logger.Info("task started",
		logging.String(logging.FieldEventType, "task_start"),
		logging.Int("pending", summary.Pending),
		logging.Int("already_done", summary.AlreadyDone),
		logging.Int("workers", t.workers),
	)

	opts := []executor.Option{
		executor.WithWorkers(t.workers),
		executor.WithAbort(t.abort),
	}
	var bar ProgressBar
	if t.progress != nil {
		bar = t.progress(t.variant.Label(), len(pending))
		if bar != nil {
			opts = append(opts, executor.WithProgress(bar))
		}
	}

	verified := make([]bool, len(pending))
	opts = append(opts, executor.WithOnOutcome(func(index int, outcome executor.Outcome, err error) {
		ref := pending[index]
		switch outcome {
		case executor.Succeeded:
			if t.variant.Done(ref) {
				verified[index] = true
				t.markDone(ref)
				return
			}
			logging.WarnWithContext(logger, "output did not pass completion check", "item_unverified",
				logging.String("input", ref.String()),
				logging.String(logging.FieldImpact, "item will be retried on the next run"),
			)
		case executor.Failed:
			t.logFailure(logger, ref, err)
		}
	}))

	results, runErr := executor.Run(ctx, pending, func(ctx context.Context, ref inputs.Ref) (struct{}, error) {
		return struct{}{}, t.variant.Work(ctx, ref)
	}, opts...)
	if bar != nil {
		_ = bar.Finish()
	}

	for i, res := range results {
		switch res.Outcome {
		case executor.Succeeded:
			if verified[i] {
				summary.Succeeded++
			} else {
				summary.Unverified++
			}
		case executor.Failed:
			if errors.Is(res.Err, ErrNoOutput) {
				summary.Empty++
			} else {
				summary.Failed++
			}
		default:
			summary.Interrupted++
		}
	}

	t.removeUnfinished(logger, results)

	switch {
	case runErr == nil:
		logger.Info("task completed",
			logging.String(logging.FieldEventType, "task_complete"),
			logging.Int("succeeded", summary.Succeeded),
			logging.Int("failed", summary.Failed),
			logging.Int("empty", summary.Empty),
		)
		return summary, nil
	case errors.Is(runErr, services.ErrAborted):
		summary.Aborted = true
		logger.Error("task aborted",
			logging.String(logging.FieldEventType, "task_abort"),
			logging.Int("succeeded", summary.Succeeded),
			logging.Int("not_processed", summary.Interrupted),
			logging.Error(runErr),
		)
		return summary, runErr
	default:
		logger.Warn("task interrupted",
			logging.String(logging.FieldEventType, "task_interrupt"),
			logging.Int("succeeded", summary.Succeeded),
			logging.Int("not_processed", summary.Interrupted),
			logging.String(logging.FieldImpact, "unfinished outputs removed; rerun to resume"),
		)
		return summary, runErr
	}
}

func (t *Task) logFailure(logger *slog.Logger, ref inputs.Ref, err error) {
	if errors.Is(err, ErrNoOutput) {
		logger.Debug("no output produced", logging.String("input", ref.String()))
		return
	}
	attrs := []logging.Attr{
		logging.String("input", ref.String()),
		logging.Error(err),
	}
	var exitErr *command.ExitError
	if errors.As(err, &exitErr) {
		attrs = append(attrs,
			logging.Int("exit_code", exitErr.Code),
			logging.String(logging.FieldCommandOutput, exitErr.Output),
		)
	}
	logging.WarnWithContext(logger, "item failed", "item_failed", attrs...)
}

// removeUnfinished removes leftovers of items whose work started but did not
// finish. Items never dispatched are left alone: whatever sits at their
// output path predates this run.
func (t *Task) removeUnfinished(logger *slog.Logger, results []executor.Result[inputs.Ref, struct{}]) {
	r, ok := t.variant.(Recoverer)
	if !ok {
		return
	}
	for _, res := range results {
		switch {
		case res.Outcome == executor.Succeeded, res.Outcome == executor.Pending:
			continue
		case t.IsDone(res.Input):
			continue
		}
		r.Recover(res.Input)
		logger.Debug("removed unfinished output", logging.String("input", res.Input.String()))
	}
}

// OutputFiles derives the output set from the filesystem: the outputs of
// every input that is currently done. It does not rely on state from a
// previous Check or Process call.
func (t *Task) OutputFiles() ([]inputs.Ref, error) {
	var out []inputs.Ref
	for _, ref := range t.refs {
		if !t.variant.Done(ref) {
			continue
		}
		refs, err := t.variant.Outputs(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, refs...)
	}
	return out, nil
}
