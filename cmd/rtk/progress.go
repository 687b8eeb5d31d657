package main

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"rtk/internal/logging"
	"rtk/internal/task"
)

// progressFactory draws bars on terminals and falls back to sampled log
// lines otherwise.
func progressFactory(w io.Writer, logger *slog.Logger) task.ProgressFunc {
	if isTerminal(w) {
		return func(label string, total int) task.ProgressBar {
			return progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(label),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionClearOnFinish(),
			)
		}
	}
	return func(label string, total int) task.ProgressBar {
		return &logProgress{
			label:   label,
			total:   total,
			logger:  logger,
			sampler: logging.NewProgressSampler(10),
		}
	}
}

type logProgress struct {
	mu      sync.Mutex
	label   string
	total   int
	done    int
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func (p *logProgress) Add(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	if p.total <= 0 || p.logger == nil {
		return nil
	}
	if p.sampler.Sample(p.label, p.done, p.total) {
		percent := float64(p.done) * 100 / float64(p.total)
		p.logger.Info("progress",
			logging.String(logging.FieldEventType, "progress"),
			logging.String("stage", p.label),
			logging.String("items", fmt.Sprintf("%d/%d", p.done, p.total)),
			logging.Int("percent", int(percent)),
		)
	}
	return nil
}

func (p *logProgress) Finish() error { return nil }
