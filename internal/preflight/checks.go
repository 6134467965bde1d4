package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"drawdiff/internal/config"
	"drawdiff/internal/deps"
	"drawdiff/internal/services"
)

const probeTimeout = 30 * time.Second

// Prober is satisfied by the 3D viewer runner.
type Prober interface {
	Probe(ctx context.Context) error
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckViewer runs the viewer library probe with a bounded timeout.
func CheckViewer(ctx context.Context, prober Prober) Result {
	const name = "3D viewer libraries"
	if prober == nil {
		return Result{Name: name, Detail: "viewer not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := prober.Probe(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeProbeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "importable"}
}

// CheckSystemDeps evaluates the external binaries drawdiff invokes for the
// given config. The viewer binaries are optional since 3D capture is skipped
// when they are absent.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "diff-pdf",
			Command:     cfg.PDFDiffBinary(),
			Description: "Required for PDF redlines",
		},
	}
	if cfg.Viewer3D.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "3D viewer",
			Command:     cfg.Viewer3D.Command,
			Description: "Renders STEP model differences",
			Optional:    true,
		})
		if cfg.Viewer3D.ProbeCommand != "" {
			requirements = append(requirements, deps.Requirement{
				Name:        "Viewer probe",
				Command:     cfg.Viewer3D.ProbeCommand,
				Description: "Checks viewer libraries before a 3D run",
				Optional:    true,
			})
		}
	}
	return deps.CheckBinaries(requirements)
}

func summarizeProbeError(err error) string {
	switch {
	case errors.Is(err, services.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "probe timed out"
	case errors.Is(err, services.ErrNotFound):
		return "libraries missing (" + err.Error() + ")"
	default:
		return err.Error()
	}
}
