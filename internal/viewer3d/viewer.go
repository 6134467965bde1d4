package viewer3d

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"drawdiff/internal/config"
	"drawdiff/internal/fileutil"
	"drawdiff/internal/logging"
	"drawdiff/internal/services"
)

// Script is the bundled Python viewer. It is passed inline to the
// interpreter through the {viewer_script} placeholder.
//
//go:embed viewer.py
var Script string

// LockName is the lock file created in the save directory while a viewer runs.
const LockName = ".drawdiff.lock"

const lockRetryDelay = 200 * time.Millisecond

// Capture reports the artifacts of one viewer run.
type Capture struct {
	// Screenshot is the final image path; empty when nothing was captured.
	Screenshot string
	Captured   bool
	ExitCode   int
	// ErrorLog is set when the viewer failed and its stderr was saved.
	ErrorLog string
	Duration time.Duration
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner launches the STEP viewer and harvests its screenshot.
type Runner struct {
	cfg    config.Viewer3D
	exec   services.Executor
	logger *slog.Logger
}

// New constructs a runner from the viewer configuration.
func New(cfg config.Viewer3D, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		exec:   services.CommandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "viewer3d")
	return r
}

// Enabled reports whether 3D comparison is switched on.
func (r *Runner) Enabled() bool {
	return r.cfg.Enabled
}

// FindStepFile returns the first existing sibling of pdfPath that shares its
// base name and carries one of the configured STEP extensions.
func (r *Runner) FindStepFile(pdfPath string) (string, bool) {
	return FindStepFile(pdfPath, r.cfg.StepExtensions)
}

// FindStepFile returns the first existing file named like pdfPath with one of
// exts in place of its extension. Extensions are tried in order.
func FindStepFile(pdfPath string, exts []string) (string, bool) {
	if strings.TrimSpace(pdfPath) == "" {
		return "", false
	}
	base := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	for _, ext := range exts {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Probe checks the viewer's libraries are importable. A nil error means the
// viewer can run.
func (r *Runner) Probe(ctx context.Context) error {
	if strings.TrimSpace(r.cfg.ProbeCommand) == "" {
		return nil
	}
	cmd := services.Command{Binary: r.cfg.ProbeCommand, Args: r.cfg.ProbeArgs}
	res, err := r.exec.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return services.Wrap(services.ErrNotFound, "viewer3d", "probe",
			fmt.Sprintf("viewer libraries unavailable (exit %d): %s", res.ExitCode, strings.TrimSpace(res.Stderr)), nil)
	}
	return nil
}

// Run opens stepA and stepB in the viewer, saving the capture next to
// outputPDF as <output base>.png. A missing screenshot is not an error.
func (r *Runner) Run(ctx context.Context, stepA, stepB, outputPDF string) (Capture, error) {
	if stepA == "" || stepB == "" || outputPDF == "" {
		return Capture{}, services.Wrap(services.ErrValidation, "viewer3d", "run", "both models and an output path required", nil)
	}
	// The viewer runs inside the save directory, so relative model paths
	// must be resolved against the caller's directory first.
	stepA, errA := filepath.Abs(stepA)
	stepB, errB := filepath.Abs(stepB)
	saveDir, errD := filepath.Abs(filepath.Dir(outputPDF))
	if err := errors.Join(errA, errB, errD); err != nil {
		return Capture{}, services.Wrap(services.ErrValidation, "viewer3d", "run", "resolve paths", err)
	}
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return Capture{}, services.Wrap(services.ErrAccess, "viewer3d", "prepare", saveDir, err)
	}

	lock := flock.New(filepath.Join(saveDir, LockName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Capture{}, services.Wrap(services.ErrAccess, "viewer3d", "lock", saveDir, err)
	}
	if !locked {
		return Capture{}, services.Wrap(services.ErrTransient, "viewer3d", "lock", "another comparison holds "+saveDir, nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	shot := filepath.Join(saveDir, r.cfg.ScreenshotName)
	if err := os.Remove(shot); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Capture{}, services.Wrap(services.ErrAccess, "viewer3d", "prepare", "remove stale screenshot", err)
	}

	errorLog := filepath.Join(saveDir, r.cfg.ErrorLogName)
	if err := os.Remove(errorLog); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Capture{}, services.Wrap(services.ErrAccess, "viewer3d", "prepare", "remove stale error log", err)
	}

	runCtx := ctx
	if r.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	args := expandArgs(r.cfg.Args, map[string]string{
		"{viewer_script}": Script,
		"{step_a}":        stepA,
		"{step_b}":        stepB,
		"{save_dir}":      saveDir,
		"{screenshot}":    r.cfg.ScreenshotName,
		"{error_log}":     r.cfg.ErrorLogName,
	})
	cmd := services.Command{Binary: r.cfg.Command, Args: args, Dir: saveDir}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("opening 3D viewer", logging.Args(
		logging.String(logging.FieldTool, r.cfg.Command),
		logging.String("step_a", filepath.Base(stepA)),
		logging.String("step_b", filepath.Base(stepB)),
	)...)

	start := time.Now()
	res, runErr := r.exec.Run(runCtx, cmd)
	capture := Capture{ExitCode: res.ExitCode, Duration: time.Since(start)}

	if runErr == nil && res.ExitCode != 0 {
		capture.ErrorLog = errorLog
		if err := writeErrorLog(errorLog, res); err != nil {
			logging.WarnWithContext(logger, "could not write viewer error log", "viewer_error_log_failed",
				logging.String("path", capture.ErrorLog),
				logging.Error(err),
			)
			capture.ErrorLog = ""
		}
		runErr = services.Wrap(services.ErrExternalTool, "viewer3d", "run",
			fmt.Sprintf("viewer exited %d", res.ExitCode), nil)
	}

	target := ScreenshotPath(outputPDF)
	if _, err := os.Stat(shot); err == nil {
		if err := fileutil.MoveFile(shot, target); err != nil {
			return capture, services.Wrap(services.ErrAccess, "viewer3d", "harvest", target, err)
		}
		capture.Screenshot = target
		capture.Captured = true
	}

	logger.Info("3D viewer closed", logging.Args(
		logging.Bool("captured", capture.Captured),
		logging.Int("exit_code", capture.ExitCode),
		logging.Duration("duration", capture.Duration),
	)...)
	return capture, runErr
}

// ScreenshotPath returns the image path that accompanies a redline output.
func ScreenshotPath(outputPDF string) string {
	return strings.TrimSuffix(outputPDF, filepath.Ext(outputPDF)) + ".png"
}

// expandArgs substitutes every placeholder in args. Substituted text is not
// scanned again, so a script body containing braces is passed through as is.
func expandArgs(args []string, values map[string]string) []string {
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	replacer := strings.NewReplacer(pairs...)
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = replacer.Replace(arg)
	}
	return out
}

// writeErrorLog records the viewer's output unless the viewer already left
// its own log for this run.
func writeErrorLog(path string, res services.Result) error {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return nil
	}
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	content := fmt.Sprintf("Error running 3D viewer (exit %d): %s\n", res.ExitCode, msg)
	return os.WriteFile(path, []byte(content), 0o644)
}
