package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mfasrt/internal/deps"
)

const versionTimeout = 30 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckParentAccess verifies that a file can be created at path: the file is
// writable when it exists, otherwise its directory is.
func CheckParentAccess(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	}
	dir := filepath.Dir(path)
	check := CheckDirectoryAccess(name, dir)
	if check.Passed {
		check.Detail = fmt.Sprintf("%s (will be created)", path)
	}
	return check
}

// CheckDependencies converts dependency statuses into preflight results.
func CheckDependencies(requirements []deps.Requirement) []Result {
	statuses := deps.Check(requirements)
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional}
		switch {
		case status.Available:
			result.Detail = status.Path
		case status.Optional:
			result.Detail = "optional: " + status.Detail
		default:
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// CheckAlignerVersion runs `<binary> version` and reports the version string.
func CheckAlignerVersion(ctx context.Context, binary string) Result {
	const name = "MFA version"

	checkCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(checkCtx, binary, "version").CombinedOutput() //nolint:gosec
	if err != nil {
		if errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
			return Result{Name: name, Detail: "version check timed out"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("version check failed (%v)", err)}
	}
	version := firstLine(string(output))
	if version == "" {
		return Result{Name: name, Detail: "version check returned no output"}
	}
	return Result{Name: name, Passed: true, Detail: version}
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
