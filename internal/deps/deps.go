package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency mfasrt relies on. Command is
// resolved through PATH; File names a data file that must exist instead.
type Requirement struct {
	Name        string
	Command     string
	File        string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Check evaluates the provided requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		if strings.TrimSpace(req.File) != "" {
			results = append(results, checkFile(req))
			continue
		}
		results = append(results, checkBinary(req))
	}
	return results
}

func checkBinary(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Path = path
	status.Available = true
	return status
}

func checkFile(req Requirement) Status {
	path := strings.TrimSpace(req.File)
	status := Status{
		Name:        req.Name,
		Path:        path,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	info, err := os.Stat(path)
	switch {
	case err != nil && os.IsNotExist(err):
		status.Detail = fmt.Sprintf("%s does not exist", path)
	case err != nil:
		status.Detail = fmt.Sprintf("stat %s: %v", path, err)
	case info.IsDir():
		status.Detail = fmt.Sprintf("%s is a directory", path)
	default:
		status.Available = true
	}
	return status
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
