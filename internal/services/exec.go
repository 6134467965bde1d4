package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command describes one external tool invocation.
type Command struct {
	Binary string
	Args   []string
	// Dir is the working directory; empty means the current directory.
	Dir string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Args, " ")
}

// Result captures how an external tool exited.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor abstracts command execution for testability. A non-zero exit is
// reported through Result.ExitCode, not as an error; errors mean the process
// could not be started or was interrupted.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

const waitDelay = 2 * time.Second

// CommandExecutor runs commands with os/exec.
type CommandExecutor struct{}

func (CommandExecutor) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Binary, c.Args...) //nolint:gosec
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, Wrap(ErrTimeout, "", c.Binary, "timed out", ctxErr)
		}
		return result, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		if errors.Is(err, exec.ErrNotFound) {
			return result, Wrap(ErrNotFound, "", c.Binary, "binary not found", err)
		}
		return result, fmt.Errorf("start %s: %w", c.Binary, err)
	}
	return result, nil
}
