package history

import "time"

// Run is one recorded comparison.
type Run struct {
	ID     string
	FileA  string
	FileB  string
	Output string
	// Outcome is the overall label (see services.Classify).
	Outcome string
	// PDFResult is the redline tool result: identical, different,
	// access_denied, failed.
	PDFResult string
	ExitCode  int
	PagesA    int
	PagesB    int
	// ModelResult is the 3D comparison result: captured, no_capture,
	// unavailable, failed, skipped.
	ModelResult string
	Screenshot  string
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration reports how long the run took.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
