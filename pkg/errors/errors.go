// Package errors defines the typed errors shared by the pipeline stages.
//
// Every error carries the captured output of the stage that produced it so
// callers can surface diagnostics without re-running anything. Use the Is*
// helpers to classify errors across wrapping boundaries.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CommandFailedError reports a nonzero exit from a command executed inside an
// execution environment. Output holds the combined stdout/stderr captured up
// to the failure.
type CommandFailedError struct {
	Command  []string
	ExitCode int
	Output   string
}

func NewCommandFailedError(command []string, exitCode int, output string) *CommandFailedError {
	return &CommandFailedError{Command: command, ExitCode: exitCode, Output: output}
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d\n%s",
		strings.Join(e.Command, " "), e.ExitCode, e.Output)
}

// TestExecutionFailedError wraps a command failure at the test-target level.
// The captured output of the failing command (including partial test results)
// is preserved via the wrapped error.
type TestExecutionFailedError struct {
	Target string
	Err    error
}

func NewTestExecutionFailedError(target string, err error) *TestExecutionFailedError {
	return &TestExecutionFailedError{Target: target, Err: err}
}

func (e *TestExecutionFailedError) Error() string {
	return fmt.Sprintf("test target %q failed: %v", e.Target, e.Err)
}

func (e *TestExecutionFailedError) Unwrap() error { return e.Err }

// ProbeFailedError reports a failed HTTP probe against the managed service:
// either a non-2xx response or a connection failure.
type ProbeFailedError struct {
	URL string
	Err error
}

func NewProbeFailedError(url string, err error) *ProbeFailedError {
	return &ProbeFailedError{URL: url, Err: err}
}

func (e *ProbeFailedError) Error() string {
	return fmt.Sprintf("probe of %s failed: %v", e.URL, e.Err)
}

func (e *ProbeFailedError) Unwrap() error { return e.Err }

// MatrixBranchFailedError labels a failure inside a single matrix branch.
// It is recorded in the branch's result slot and never escalated past the
// matrix boundary.
type MatrixBranchFailedError struct {
	Version string
	Err     error
}

func NewMatrixBranchFailedError(version string, err error) *MatrixBranchFailedError {
	return &MatrixBranchFailedError{Version: version, Err: err}
}

func (e *MatrixBranchFailedError) Error() string {
	return fmt.Sprintf("version %s: %v", e.Version, e.Err)
}

func (e *MatrixBranchFailedError) Unwrap() error { return e.Err }

func IsCommandFailedError(err error) bool {
	var target *CommandFailedError
	return errors.As(err, &target)
}

func IsTestExecutionFailedError(err error) bool {
	var target *TestExecutionFailedError
	return errors.As(err, &target)
}

func IsProbeFailedError(err error) bool {
	var target *ProbeFailedError
	return errors.As(err, &target)
}

func IsMatrixBranchFailedError(err error) bool {
	var target *MatrixBranchFailedError
	return errors.As(err, &target)
}

// CapturedOutput extracts the captured command output from err, if any
// command failure is present in its chain.
func CapturedOutput(err error) (string, bool) {
	var cmdErr *CommandFailedError
	if errors.As(err, &cmdErr) {
		return cmdErr.Output, true
	}
	return "", false
}
