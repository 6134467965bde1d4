package pdfdiff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"drawdiff/internal/logging"
	"drawdiff/internal/services"
)

// Result is the outcome of one comparison.
type Result string

const (
	Identical    Result = "identical"
	Different    Result = "different"
	AccessDenied Result = "access_denied"
	Failed       Result = "failed"
)

// Outcome reports a finished comparison.
type Outcome struct {
	Result   Result
	ExitCode int
	Output   string
	Stderr   string
	Duration time.Duration
}

// Succeeded reports whether a redline was produced (identical or different).
func (o Outcome) Succeeded() bool {
	return o.Result == Identical || o.Result == Different
}

// Comparer is the behaviour the comparison runner depends on.
type Comparer interface {
	Compare(ctx context.Context, fileA, fileB, output string) (Outcome, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps diff-pdf CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    services.Executor
	logger  *slog.Logger
}

// New constructs a diff-pdf client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("diff-pdf binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    services.CommandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "pdfdiff")
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Compare renders the differences between fileA (original) and fileB
// (comparison) into output. A non-nil error is returned for every result
// other than Identical and Different; the Outcome is still populated.
func (c *Client) Compare(ctx context.Context, fileA, fileB, output string) (Outcome, error) {
	if fileA == "" || fileB == "" {
		return Outcome{Result: Failed}, services.Wrap(services.ErrValidation, "pdfdiff", "compare", "both files required", nil)
	}
	if output == "" {
		output = DefaultOutputPath(fileB, DefaultSuffix)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := services.Command{
		Binary: c.binary,
		Args: []string{
			"--output-diff=" + filepath.Clean(output),
			filepath.Clean(fileB),
			filepath.Clean(fileA),
		},
		Dir: workingDir(c.binary),
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("running diff-pdf", logging.Args(
		logging.String(logging.FieldTool, c.binary),
		logging.String("command", cmd.String()),
	)...)

	start := time.Now()
	res, err := c.exec.Run(runCtx, cmd)
	outcome := Outcome{
		ExitCode: res.ExitCode,
		Output:   output,
		Stderr:   strings.TrimSpace(res.Stderr),
		Duration: time.Since(start),
	}
	if err != nil {
		outcome.Result = Failed
		if errors.Is(err, services.ErrTimeout) || errors.Is(err, services.ErrNotFound) || errors.Is(err, context.Canceled) {
			return outcome, err
		}
		return outcome, services.Wrap(services.ErrExternalTool, "pdfdiff", "compare", "run diff-pdf", err)
	}

	outcome.Result = classify(res.ExitCode, res.Stderr)
	logger.Info("diff-pdf finished", logging.Args(
		logging.String("result", string(outcome.Result)),
		logging.Int("exit_code", outcome.ExitCode),
		logging.Duration("duration", outcome.Duration),
		logging.String("output", output),
	)...)

	switch outcome.Result {
	case Identical, Different:
		return outcome, nil
	case AccessDenied:
		return outcome, services.Wrap(services.ErrAccess, "pdfdiff", "compare",
			fmt.Sprintf("could not write %s (exit %d): %s", output, res.ExitCode, outcome.Stderr), nil)
	default:
		return outcome, services.Wrap(services.ErrExternalTool, "pdfdiff", "compare",
			fmt.Sprintf("diff-pdf exited %d: %s", res.ExitCode, outcome.Stderr), nil)
	}
}

func classify(exitCode int, stderr string) Result {
	switch {
	case exitCode == 0:
		return Identical
	case exitCode == 1:
		return Different
	case exitCode == 2, exitCode == 3, strings.Contains(stderr, "Error opening"):
		return AccessDenied
	default:
		return Failed
	}
}

// workingDir returns the binary's directory when it is given as a path, so a
// bundled diff-pdf finds its sibling libraries. Bare names run in the
// current directory.
func workingDir(binary string) string {
	if !strings.ContainsRune(binary, filepath.Separator) {
		return ""
	}
	return filepath.Dir(binary)
}
