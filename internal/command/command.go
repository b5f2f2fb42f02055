// Package command runs external tools and reports their failures.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Error describes an external command that exited unsuccessfully.
type Error struct {
	Tool     string   // executable that was run
	Args     []string // arguments passed to it
	ExitCode int      // -1 when the process never started or was killed
	Stderr   string   // captured standard error, if any
	Err      error    // underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Command returns the command line that failed
func (e *Error) Command() string {
	return strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
}

// Run executes name with args and returns its standard output.
// A non-zero exit is returned as *Error with stderr attached.
func Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), newError(ctx, name, args, stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// Stream executes name with args, copying its output to w as it runs.
// Stderr is also kept so a failure can report it.
func Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	if w == nil {
		w = io.Discard
	}
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stdout = w
	cmd.Stderr = io.MultiWriter(w, &stderr)

	if err := cmd.Run(); err != nil {
		return newError(ctx, name, args, stderr.String(), err)
	}
	return nil
}

func newError(ctx context.Context, name string, args []string, stderr string, err error) *Error {
	cerr := &Error{
		Tool:     name,
		Args:     args,
		ExitCode: -1,
		Stderr:   stderr,
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
	}

	// Surface cancellation so callers can errors.Is(err, context.Canceled)
	if ctxErr := ctx.Err(); ctxErr != nil {
		cerr.Err = ctxErr
	}
	return cerr
}
