package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultTimeout = 120 * time.Second

	// ExitTimeout and ExitCancelled follow the coreutils timeout and SIGINT conventions.
	ExitTimeout   = 124
	ExitCancelled = 130
	ExitNotFound  = 127

	waitDelay = 2 * time.Second
)

var (
	ErrEmptyCommand = errors.New("command line is empty")
	ErrLaunch       = errors.New("command launch failed")
)

// Command is one shell invocation.
type Command struct {
	Dir  string
	Line string
	// Env holds KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// Result is the normalized outcome of a command that was started.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Success   bool
	TimedOut  bool
	Cancelled bool
	Duration  time.Duration
}

// CommandRunner abstracts shell command execution for seeding adapters.
// A nonzero exit is reported through Result, never as an error.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner executes commands on the local host through the platform shell.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

func (r ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	line := strings.TrimSpace(c.Line)
	if line == "" {
		return Result{ExitCode: ExitNotFound}, ErrEmptyCommand
	}
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		return Result{ExitCode: ExitNotFound}, fmt.Errorf("%w: resolve dir %q: %v", ErrLaunch, c.Dir, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	name, args := shellArgs(line)
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{
			Stderr:   err.Error(),
			ExitCode: ExitNotFound,
			Duration: time.Since(start),
		}, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	waitErr := cmd.Wait()

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	// A clean exit wins even if ctx ended after the process finished. Any end
	// of the caller's ctx, deadline included, is a cancellation; only the
	// runner's own deadline is a timeout.
	switch {
	case waitErr == nil:
		res.Success = true
	case ctx.Err() != nil:
		res.Cancelled = true
		res.ExitCode = ExitCancelled
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.ExitCode = ExitTimeout
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = 1
		}
		if res.ExitCode == 0 {
			res.ExitCode = 1
		}
	}
	return res, nil
}
