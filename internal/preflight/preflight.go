package preflight

import (
	"context"
	"fmt"
	"strings"

	"rtk/internal/config"
	"rtk/internal/task"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check applicable to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	for _, status := range CheckBinaries(TaskRequirements(cfg)) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
		if !status.Available {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}

	if strings.TrimSpace(cfg.S3.Endpoint) != "" {
		results = append(results, CheckS3(ctx, cfg.S3))
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// TaskRequirements lists the external programs of the configured tasks. A
// task whose definition cannot be parsed is reported with an empty command
// so the check fails with a clear detail.
func TaskRequirements(cfg *config.Config) []Requirement {
	var reqs []Requirement
	seen := make(map[string]struct{})
	for _, def := range cfg.Tasks {
		binary, err := task.Binary(def)
		if err != nil {
			reqs = append(reqs, Requirement{
				Name:        def.Name,
				Description: fmt.Sprintf("invalid %s definition", def.Kind),
			})
			continue
		}
		if binary == "" {
			continue
		}
		if _, dup := seen[binary]; dup {
			continue
		}
		seen[binary] = struct{}{}
		reqs = append(reqs, Requirement{
			Name:        def.Name,
			Command:     binary,
			Description: fmt.Sprintf("Required by %s task %q", def.Kind, def.Name),
		})
	}
	return reqs
}
