package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rtk/internal/command"
	"rtk/internal/config"
	"rtk/internal/fetch"
	"rtk/internal/inputs"
	"rtk/internal/logging"
	"rtk/internal/services"
	"rtk/internal/task"
)

// BatchReport collects the task summaries of one batch.
type BatchReport struct {
	Index  int
	Inputs int
	Tasks  []task.Summary
}

// Report describes a pipeline run.
type Report struct {
	RunID    string
	Batches  []BatchReport
	Duration time.Duration
}

// Failed counts the items that failed across the run.
func (r Report) Failed() int {
	total := 0
	for _, b := range r.Batches {
		for _, s := range b.Tasks {
			total += s.Failed
		}
	}
	return total
}

// Runner executes the configured task chain over the input list.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  fetch.Fetcher
	runner   command.Runner
	progress task.ProgressFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFetcher overrides the network fetcher built from the configuration.
func WithFetcher(f fetch.Fetcher) Option {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithCommandRunner overrides how external programs are executed.
func WithCommandRunner(cr command.Runner) Option {
	return func(r *Runner) {
		r.runner = cr
	}
}

// WithProgress installs a progress bar factory passed to every task.
func WithProgress(fn task.ProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// New constructs a Runner for cfg.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "configuration required", nil)
	}
	r := &Runner{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		mux, err := fetch.NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		r.fetcher = mux
	}
	if r.runner == nil {
		r.runner = command.ExecRunner{}
	}
	r.logger = logging.NewComponentLogger(r.logger, "pipeline")
	return r, nil
}

func (r *Runner) deps(logger *slog.Logger) task.Deps {
	return task.Deps{
		Fetcher:  r.fetcher,
		Runner:   r.runner,
		Logger:   logger,
		Progress: r.progress,
	}
}

// Batches reads the input list and splits it by the configured batch size.
func (r *Runner) Batches() ([][]string, error) {
	if r.cfg.Pipeline.InputList == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "read inputs", "pipeline.input_list is not set", nil)
	}
	entries, err := inputs.ReadList(r.cfg.Pipeline.InputList)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "read inputs", r.cfg.Pipeline.InputList, err)
	}
	return inputs.Batch(entries, r.cfg.Pipeline.BatchSize), nil
}

// Run processes every batch in order. It stops at the first batch whose
// tasks aborted or were interrupted and returns that error with the report
// gathered so far.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)

	if len(r.cfg.Tasks) == 0 {
		return report, services.Wrap(services.ErrConfiguration, "pipeline", "run", "no tasks configured", nil)
	}
	lock, err := acquire(r.cfg.Paths.WorkDir)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release work directory lock", logging.Error(err))
		}
	}()

	batches, err := r.Batches()
	if err != nil {
		return report, err
	}

	start := time.Now()
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("batches", len(batches)),
		logging.Int("tasks", len(r.cfg.Tasks)),
	)

	for i, batch := range batches {
		batchCtx := services.WithBatch(ctx, i+1)
		summaries, err := r.RunBatch(batchCtx, batch)
		report.Batches = append(report.Batches, BatchReport{Index: i + 1, Inputs: len(batch), Tasks: summaries})
		if err != nil {
			report.Duration = time.Since(start)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Warn("run interrupted",
					logging.String(logging.FieldEventType, "run_interrupt"),
					logging.Int("batch", i+1),
					logging.String(logging.FieldImpact, "rerun to resume from the filesystem state"),
				)
			} else {
				logger.Error("run stopped",
					logging.String(logging.FieldEventType, "run_failure"),
					logging.Int("batch", i+1),
					logging.Error(err),
				)
			}
			return report, err
		}
	}

	report.Duration = time.Since(start)
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("batches", len(batches)),
		logging.Int("failed_items", report.Failed()),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

// RunBatch runs the task chain over one batch of input entries.
func (r *Runner) RunBatch(ctx context.Context, batch []string) ([]task.Summary, error) {
	logger := logging.WithContext(ctx, r.logger)
	var summaries []task.Summary
	err := r.walk(ctx, batch, logger, func(tk *task.Task) error {
		summary, err := tk.Process(ctx)
		summaries = append(summaries, summary)
		return err
	})
	return summaries, err
}

// walk builds each task of the chain over its resolved inputs and hands it
// to visit. Inputs of later tasks are read from disk after visit returns.
func (r *Runner) walk(ctx context.Context, batch []string, logger *slog.Logger, visit func(*task.Task) error) error {
	built := make(map[string]*task.Task, len(r.cfg.Tasks))
	var previous *task.Task
	for i, def := range r.cfg.Tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		refs, err := r.inputsFor(i, def, batch, built, previous)
		if err != nil {
			return err
		}
		def.Workers = r.cfg.EffectiveWorkers(def)
		tk, err := task.Build(def, refs, r.deps(logger))
		if err != nil {
			return err
		}
		if err := visit(tk); err != nil {
			return err
		}
		built[def.Name] = tk
		previous = tk
	}
	return nil
}

func (r *Runner) inputsFor(index int, def config.Task, batch []string, built map[string]*task.Task, previous *task.Task) ([]inputs.Ref, error) {
	if def.From != "" {
		source, ok := built[def.From]
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "chain",
				fmt.Sprintf("task %q reads from unknown task %q", def.Name, def.From), nil)
		}
		return source.OutputFiles()
	}
	if index == 0 || previous == nil {
		if def.Kind == config.KindDownload {
			return inputs.Pairs(batch, r.cfg.Pipeline.Dir), nil
		}
		return inputs.Paths(batch), nil
	}
	return previous.OutputFiles()
}
