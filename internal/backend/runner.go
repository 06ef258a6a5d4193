// Package backend invokes the bd CLI as a subprocess and decodes its
// JSON output into typed structs. Every call spawns one short-lived
// process with a discrete argument vector; nothing here ever starts a
// shell or concatenates arguments into a command string.
package backend

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Default invocation timeouts. Reads are short; writes get more
// tolerance because the backend may flush to git-backed storage.
const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
)

// DefaultBinary is the backend executable resolved from PATH.
const DefaultBinary = "bd"

// Request describes one backend invocation.
type Request struct {
	// Args is the argument vector after the binary name, e.g.
	// ["list", "--status", "open", "--json"]. Each value is a discrete
	// element; values are never shell-interpreted.
	Args []string

	// Timeout bounds the invocation. Zero means DefaultReadTimeout.
	Timeout time.Duration

	// Dir is the working directory for the subprocess. Empty inherits
	// the caller's directory.
	Dir string
}

// Result carries the captured output of a completed invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Runner executes one backend CLI invocation per call. The interface
// exists so the adapter can be tested with scripted outputs instead of
// real subprocesses.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// ExecRunner runs the real backend binary via os/exec.
type ExecRunner struct {
	// Binary is the backend executable. Empty means DefaultBinary.
	Binary string

	// Dir is the default working directory for invocations that do not
	// set their own.
	Dir string
}

// Run spawns the backend with req.Args. On non-zero exit the stderr
// text is wrapped into a backend error for upstream sanitization. On
// deadline expiry the subprocess and its children are killed, not left
// running.
func (r *ExecRunner) Run(ctx context.Context, req Request) (Result, error) {
	binary := r.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, req.Args...)
	if req.Dir != "" {
		cmd.Dir = req.Dir
	} else if r.Dir != "" {
		cmd.Dir = r.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setProcGroup(cmd)
	cmd.Cancel = func() error { return killProc(cmd) }
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	runErr := cmd.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	op := Operation(req.Args)

	if runErr == nil {
		return res, nil
	}

	// Deadline beats the exec error: cmd.Run reports the kill, not the
	// reason for it.
	if ctx.Err() == context.DeadlineExceeded {
		res.ExitCode = -1
		return res, &Error{
			Kind:   KindTimeout,
			Op:     op,
			Detail: "backend did not respond within " + timeout.String(),
			Err:    context.DeadlineExceeded,
		}
	}
	if ctx.Err() == context.Canceled {
		res.ExitCode = -1
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &Error{
			Kind:   KindBackend,
			Op:     op,
			Detail: exitErr.String(),
			Stderr: stderr.String(),
			Err:    runErr,
		}
	}

	// exec.ErrNotFound and friends: the binary itself is unreachable.
	res.ExitCode = -1
	return res, &Error{
		Kind:   KindConnectionLost,
		Op:     op,
		Detail: "cannot start backend " + binary,
		Err:    runErr,
	}
}

// Operation names an invocation for error context and span names: the
// subcommand, plus the sub-subcommand for two-word verbs like "dep add".
func Operation(args []string) string {
	if len(args) == 0 {
		return ""
	}
	switch args[0] {
	case "dep", "comments":
		if len(args) > 1 {
			return args[0] + " " + args[1]
		}
	}
	return args[0]
}
