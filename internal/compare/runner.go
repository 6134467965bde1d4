package compare

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"drawdiff/internal/config"
	"drawdiff/internal/docinfo"
	"drawdiff/internal/history"
	"drawdiff/internal/logging"
	"drawdiff/internal/pdfdiff"
	"drawdiff/internal/services"
	"drawdiff/internal/viewer3d"
)

// ModelStatus is the result of the optional 3D comparison.
type ModelStatus string

const (
	ModelCaptured    ModelStatus = "captured"
	ModelNoCapture   ModelStatus = "no_capture"
	ModelUnavailable ModelStatus = "unavailable"
	ModelFailed      ModelStatus = "failed"
	ModelSkipped     ModelStatus = "skipped"
)

// ModelViewer is the 3D behaviour the runner depends on.
type ModelViewer interface {
	Enabled() bool
	FindStepFile(pdfPath string) (string, bool)
	Probe(ctx context.Context) error
	Run(ctx context.Context, stepA, stepB, outputPDF string) (viewer3d.Capture, error)
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Request describes one comparison.
type Request struct {
	FileA string
	FileB string
	// Output is the redline path; empty derives it from FileB.
	Output string
	Skip3D bool
}

// ModelReport describes the 3D half of a run.
type ModelReport struct {
	Status     ModelStatus
	StepA      string
	StepB      string
	Screenshot string
	ErrorLog   string
	Reason     string
}

// Report summarizes a comparison run.
type Report struct {
	RunID      string
	FileA      string
	FileB      string
	Output     string
	PagesA     int
	PagesB     int
	PDF        pdfdiff.Outcome
	Model      ModelReport
	Outcome    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithComparer replaces the PDF comparison client.
func WithComparer(c pdfdiff.Comparer) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.pdf = c
		}
	}
}

// WithViewer replaces the 3D viewer.
func WithViewer(v ModelViewer) RunnerOption {
	return func(r *Runner) {
		if v != nil {
			r.viewer = v
		}
	}
}

// WithRecorder attaches run history.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithRunnerLogger attaches a logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes comparisons.
type Runner struct {
	cfg      *config.Config
	pdf      pdfdiff.Comparer
	viewer   ModelViewer
	recorder Recorder
	logger   *slog.Logger
}

// NewRunner builds a runner whose tools come from cfg unless overridden.
func NewRunner(cfg *config.Config, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	r := &Runner{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "compare")
	if r.pdf == nil {
		client, err := pdfdiff.New(cfg.PDFDiffBinary(), cfg.PDFDiff.TimeoutSeconds, pdfdiff.WithLogger(r.logger))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "compare", "init", "pdfdiff client", err)
		}
		r.pdf = client
	}
	if r.viewer == nil {
		r.viewer = viewer3d.New(cfg.Viewer3D, viewer3d.WithLogger(r.logger))
	}
	return r, nil
}

// OutputFor returns the redline path used when a request leaves Output empty.
func (r *Runner) OutputFor(fileB string) string {
	return pdfdiff.DefaultOutputPath(fileB, r.cfg.PDFDiff.OutputSuffix)
}

// Run performs the comparison. The returned error reflects the PDF redline;
// 3D problems are reported in Report.Model only.
func (r *Runner) Run(ctx context.Context, req Request) (Report, error) {
	report := Report{
		RunID:     uuid.NewString(),
		FileA:     req.FileA,
		FileB:     req.FileB,
		Output:    strings.TrimSpace(req.Output),
		StartedAt: time.Now(),
		Model:     ModelReport{Status: ModelSkipped},
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)

	if req.FileA == "" || req.FileB == "" {
		return report, services.Wrap(services.ErrValidation, "compare", "inputs", "select both files first", nil)
	}
	if report.Output == "" {
		report.Output = r.OutputFor(req.FileB)
	}

	err := r.validate(ctx, &report)
	if err == nil {
		report.PDF, err = r.pdf.Compare(ctx, req.FileA, req.FileB, report.Output)
		if err != nil {
			logging.ErrorWithContext(logger, "pdf comparison failed", "pdf_compare_failed",
				logging.Error(err),
				logging.Int("exit_code", report.PDF.ExitCode),
				logging.String(logging.FieldErrorHint, hintFor(err)),
			)
		}
		if !req.Skip3D {
			report.Model = r.runModels(ctx, logger, req, report.Output)
		}
	}

	report.Outcome = services.Classify(err)
	report.FinishedAt = time.Now()
	r.record(ctx, logger, report, err)
	return report, err
}

func (r *Runner) validate(ctx context.Context, report *Report) error {
	for _, slot := range []struct {
		name  Slot
		path  string
		pages *int
	}{
		{SlotA, report.FileA, &report.PagesA},
		{SlotB, report.FileB, &report.PagesB},
	} {
		slotLogger := logging.WithContext(services.WithSlot(ctx, string(slot.name)), r.logger)
		info, err := docinfo.RequirePDF(slot.path)
		if err != nil {
			return err
		}
		if info.ExtensionMismatch {
			logging.WarnWithContext(slotLogger, "file content does not match its extension", "extension_mismatch",
				logging.String("path", slot.path),
				logging.String("mime", info.MIME),
				logging.String(logging.FieldImpact, "compared as PDF anyway"),
			)
		}
		pages, err := docinfo.PageCount(slot.path)
		if err != nil {
			logging.WarnWithContext(slotLogger, "could not count pages", "page_count_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "page count omitted from report"),
			)
			continue
		}
		*slot.pages = pages
		slotLogger.Debug("input validated", logging.Args(
			logging.String("path", slot.path),
			logging.Int("pages", pages),
		)...)
	}
	return nil
}

func (r *Runner) runModels(ctx context.Context, logger *slog.Logger, req Request, output string) ModelReport {
	report := ModelReport{Status: ModelSkipped}
	if r.viewer == nil || !r.viewer.Enabled() {
		report.Reason = "3D comparison disabled"
		return report
	}
	stepA, okA := r.viewer.FindStepFile(req.FileA)
	stepB, okB := r.viewer.FindStepFile(req.FileB)
	report.StepA, report.StepB = stepA, stepB
	if !okA || !okB {
		report.Reason = "no matching STEP files"
		return report
	}

	if err := r.viewer.Probe(ctx); err != nil {
		logging.WarnWithContext(logger, "3D viewer unavailable", "viewer_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "3D comparison skipped"),
			logging.String(logging.FieldErrorHint, "pip install diff3d build123d pyvista"),
		)
		report.Status = ModelUnavailable
		report.Reason = err.Error()
		return report
	}

	capture, err := r.viewer.Run(ctx, stepA, stepB, output)
	report.Screenshot = capture.Screenshot
	report.ErrorLog = capture.ErrorLog
	switch {
	case err != nil:
		logging.WarnWithContext(logger, "3D viewer failed", "viewer_failed",
			logging.Error(err),
			logging.String("error_log", capture.ErrorLog),
			logging.String(logging.FieldImpact, "no 3D screenshot saved"),
		)
		report.Status = ModelFailed
		report.Reason = err.Error()
	case capture.Captured:
		report.Status = ModelCaptured
	default:
		report.Status = ModelNoCapture
		report.Reason = "viewer closed without a screenshot"
	}
	return report
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, report Report, runErr error) {
	if r.recorder == nil {
		return
	}
	run := &history.Run{
		ID:          report.RunID,
		FileA:       report.FileA,
		FileB:       report.FileB,
		Output:      report.Output,
		Outcome:     report.Outcome,
		PDFResult:   string(report.PDF.Result),
		ExitCode:    report.PDF.ExitCode,
		PagesA:      report.PagesA,
		PagesB:      report.PagesB,
		ModelResult: string(report.Model.Status),
		Screenshot:  report.Model.Screenshot,
		StartedAt:   report.StartedAt,
		FinishedAt:  report.FinishedAt,
	}
	if run.PDFResult == "" {
		run.PDFResult = "not_run"
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := r.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "could not record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from history"),
		)
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrAccess):
		return "close the output PDF if it is open, or allow the tool to write to the folder"
	case errors.Is(err, services.ErrNotFound):
		return "install diff-pdf or set pdfdiff.binary / DRAWDIFF_PDFDIFF"
	case errors.Is(err, services.ErrTimeout):
		return "raise pdfdiff.timeout_seconds"
	default:
		return "check logs for details"
	}
}
