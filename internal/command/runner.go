package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const defaultMaxLines = 200

// Runner executes a binary and returns its captured output.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// ExitError reports a process that ran but exited with a non-zero status.
type ExitError struct {
	Binary string
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Binary, e.Code)
}

// ExecRunner runs processes directly (no shell), merging stdout and stderr
// into a bounded tail buffer.
type ExecRunner struct {
	// MaxLines bounds the captured output; zero means 200 lines.
	MaxLines int
	// OnLine, when set, observes every output line as it is produced.
	OnLine func(string)
}

// Run starts binary and waits for it. Any non-zero exit yields *ExitError.
func (r ExecRunner) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", binary, err)
	}

	tail := newTailBuffer(r.MaxLines)
	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(reader io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			tail.add(line)
			if r.OnLine != nil {
				r.OnLine(line)
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return tail.String(), fmt.Errorf("scan output: %w", scanErr)
	}

	err = cmd.Wait()
	output := tail.String()
	if err == nil {
		return output, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return output, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, &ExitError{Binary: binary, Code: exitErr.ExitCode(), Output: output}
	}
	return output, fmt.Errorf("wait %s: %w", binary, err)
}

type tailBuffer struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func newTailBuffer(max int) *tailBuffer {
	if max <= 0 {
		max = defaultMaxLines
	}
	return &tailBuffer{max: max}
}

func (b *tailBuffer) add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}
