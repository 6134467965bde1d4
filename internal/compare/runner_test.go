package compare_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"drawdiff/internal/compare"
	"drawdiff/internal/pdfdiff"
	"drawdiff/internal/services"
	"drawdiff/internal/testsupport"
	"drawdiff/internal/viewer3d"
)

type stubComparer struct {
	outcome pdfdiff.Outcome
	err     error
	calls   [][3]string
}

func (s *stubComparer) Compare(_ context.Context, fileA, fileB, output string) (pdfdiff.Outcome, error) {
	s.calls = append(s.calls, [3]string{fileA, fileB, output})
	out := s.outcome
	out.Output = output
	return out, s.err
}

type stubViewer struct {
	enabled  bool
	probeErr error
	capture  viewer3d.Capture
	runErr   error
	runs     int
	exts     []string
}

func (v *stubViewer) Enabled() bool { return v.enabled }

func (v *stubViewer) FindStepFile(pdfPath string) (string, bool) {
	exts := v.exts
	if len(exts) == 0 {
		exts = []string{".step"}
	}
	return viewer3d.FindStepFile(pdfPath, exts)
}

func (v *stubViewer) Probe(context.Context) error { return v.probeErr }

func (v *stubViewer) Run(_ context.Context, _, _, _ string) (viewer3d.Capture, error) {
	v.runs++
	return v.capture, v.runErr
}

func pdfPair(t *testing.T, withSteps bool) (string, string) {
	t.Helper()
	dir := t.TempDir()
	a := filepath.Join(dir, "Widget_Rev1.pdf")
	b := filepath.Join(dir, "Widget_Rev2.pdf")
	testsupport.WritePDF(t, a)
	testsupport.WritePDF(t, b)
	if withSteps {
		testsupport.WriteFile(t, filepath.Join(dir, "Widget_Rev1.step"), 16)
		testsupport.WriteFile(t, filepath.Join(dir, "Widget_Rev2.step"), 16)
	}
	return a, b
}

func TestRunProducesReportAndHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	a, b := pdfPair(t, true)

	pdf := &stubComparer{outcome: pdfdiff.Outcome{Result: pdfdiff.Different, ExitCode: 1}}
	viewer := &stubViewer{enabled: true, capture: viewer3d.Capture{Captured: true, Screenshot: "/x/Widget_Rev2-Redline.png"}}
	runner, err := compare.NewRunner(cfg,
		compare.WithComparer(pdf),
		compare.WithViewer(viewer),
		compare.WithRecorder(store),
	)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	report, err := runner.Run(context.Background(), compare.Request{FileA: a, FileB: b})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	wantOutput := filepath.Join(filepath.Dir(b), "Widget_Rev2-Redline.pdf")
	if report.Output != wantOutput {
		t.Fatalf("output = %q, want %q", report.Output, wantOutput)
	}
	if pdf.calls[0] != [3]string{a, b, wantOutput} {
		t.Fatalf("unexpected compare call %v", pdf.calls[0])
	}
	if report.PagesA != 1 || report.PagesB != 1 {
		t.Fatalf("expected page counts, got %d/%d", report.PagesA, report.PagesB)
	}
	if report.Model.Status != compare.ModelCaptured {
		t.Fatalf("model status = %s (%s)", report.Model.Status, report.Model.Reason)
	}
	if report.Outcome != services.OutcomeOK {
		t.Fatalf("outcome = %s", report.Outcome)
	}

	run, err := store.Get(context.Background(), report.RunID)
	if err != nil || run == nil {
		t.Fatalf("expected recorded run, got %v err=%v", run, err)
	}
	if run.PDFResult != "different" || run.ModelResult != "captured" || run.Screenshot != "/x/Widget_Rev2-Redline.png" {
		t.Fatalf("unexpected history row %+v", run)
	}
}

func TestRunSkipsModelsWithoutStepFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	a, b := pdfPair(t, false)
	viewer := &stubViewer{enabled: true}
	runner, _ := compare.NewRunner(cfg, compare.WithComparer(&stubComparer{}), compare.WithViewer(viewer))

	report, err := runner.Run(context.Background(), compare.Request{FileA: a, FileB: b})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Model.Status != compare.ModelSkipped || viewer.runs != 0 {
		t.Fatalf("expected skipped model comparison, got %+v runs=%d", report.Model, viewer.runs)
	}
}

func TestRunHonoursSkip3D(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	a, b := pdfPair(t, true)
	viewer := &stubViewer{enabled: true}
	runner, _ := compare.NewRunner(cfg, compare.WithComparer(&stubComparer{}), compare.WithViewer(viewer))
	report, _ := runner.Run(context.Background(), compare.Request{FileA: a, FileB: b, Skip3D: true})
	if report.Model.Status != compare.ModelSkipped || viewer.runs != 0 {
		t.Fatalf("expected 3D skipped, got %+v", report.Model)
	}
}

func TestRunReportsUnavailableViewer(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	a, b := pdfPair(t, true)
	viewer := &stubViewer{enabled: true, probeErr: services.Wrap(services.ErrNotFound, "viewer3d", "probe", "no diff3d", nil)}
	runner, _ := compare.NewRunner(cfg, compare.WithComparer(&stubComparer{}), compare.WithViewer(viewer))
	report, err := runner.Run(context.Background(), compare.Request{FileA: a, FileB: b})
	if err != nil {
		t.Fatalf("viewer problems must not fail the run: %v", err)
	}
	if report.Model.Status != compare.ModelUnavailable || viewer.runs != 0 {
		t.Fatalf("expected unavailable, got %+v runs=%d", report.Model, viewer.runs)
	}
}

func TestRunReportsViewerOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		capture viewer3d.Capture
		err     error
		want    compare.ModelStatus
	}{
		{"no capture", viewer3d.Capture{}, nil, compare.ModelNoCapture},
		{"failed", viewer3d.Capture{ErrorLog: "/x/diff3d_error.log"}, services.Wrap(services.ErrExternalTool, "viewer3d", "run", "exit 1", nil), compare.ModelFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			a, b := pdfPair(t, true)
			viewer := &stubViewer{enabled: true, capture: tt.capture, runErr: tt.err}
			runner, _ := compare.NewRunner(cfg, compare.WithComparer(&stubComparer{}), compare.WithViewer(viewer))
			report, err := runner.Run(context.Background(), compare.Request{FileA: a, FileB: b})
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if report.Model.Status != tt.want {
				t.Fatalf("status = %s, want %s", report.Model.Status, tt.want)
			}
			if report.Model.ErrorLog != tt.capture.ErrorLog {
				t.Fatalf("error log = %q", report.Model.ErrorLog)
			}
		})
	}
}

func TestRunPropagatesPDFFailureAndStillRunsModels(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	a, b := pdfPair(t, true)
	pdf := &stubComparer{
		outcome: pdfdiff.Outcome{Result: pdfdiff.AccessDenied, ExitCode: 2},
		err:     services.Wrap(services.ErrAccess, "pdfdiff", "compare", "locked", nil),
	}
	viewer := &stubViewer{enabled: true, capture: viewer3d.Capture{Captured: true}}
	runner, _ := compare.NewRunner(cfg, compare.WithComparer(pdf), compare.WithViewer(viewer), compare.WithRecorder(store))

	report, err := runner.Run(context.Background(), compare.Request{FileA: a, FileB: b, Output: filepath.Join(t.TempDir(), "custom.pdf")})
	if !errors.Is(err, services.ErrAccess) {
		t.Fatalf("expected access error, got %v", err)
	}
	if report.Outcome != services.OutcomeAccess {
		t.Fatalf("outcome = %s", report.Outcome)
	}
	if viewer.runs != 1 {
		t.Fatal("3D comparison should still run after a PDF failure")
	}
	run, _ := store.Get(context.Background(), report.RunID)
	if run == nil || run.Outcome != services.OutcomeAccess || run.ExitCode != 2 || run.Error == "" {
		t.Fatalf("unexpected history row %+v", run)
	}
}

func TestRunRejectsNonPDFInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	a, _ := pdfPair(t, false)
	notPDF := filepath.Join(t.TempDir(), "Widget_Rev2.pdf")
	if err := os.WriteFile(notPDF, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	pdf := &stubComparer{}
	runner, _ := compare.NewRunner(cfg, compare.WithComparer(pdf), compare.WithRecorder(store))

	report, err := runner.Run(context.Background(), compare.Request{FileA: a, FileB: notPDF})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(pdf.calls) != 0 {
		t.Fatal("diff-pdf must not run on invalid input")
	}
	run, _ := store.Get(context.Background(), report.RunID)
	if run == nil || run.Outcome != services.OutcomeInvalid || run.PDFResult != "not_run" {
		t.Fatalf("unexpected history row %+v", run)
	}
}

func TestRunRequiresBothFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner, _ := compare.NewRunner(cfg, compare.WithComparer(&stubComparer{}))
	if _, err := runner.Run(context.Background(), compare.Request{FileA: "a.pdf"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRunnerBuildsDefaultTools(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner, err := compare.NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if got := runner.OutputFor("/d/Part-03.pdf"); got != "/d/Part-03-Redline.pdf" {
		t.Fatalf("OutputFor = %q", got)
	}
	if _, err := compare.NewRunner(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
