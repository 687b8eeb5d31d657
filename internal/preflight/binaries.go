package preflight

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external program a task invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports whether a requirement resolves.
type Status struct {
	Name      string
	Command   string
	Available bool
	Detail    string
}

// CheckBinaries resolves every requirement on PATH. Commands containing a
// path separator are checked as given.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{Name: req.Name, Command: cmd}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
			if req.Description != "" {
				status.Detail = req.Description
			}
		default:
			resolved, err := exec.LookPath(cmd)
			if err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
				break
			}
			status.Available = true
			status.Command = resolved
		}
		results = append(results, status)
	}
	return results
}
