package preflight

import (
	"context"
	"path/filepath"

	"drawdiff/internal/config"
	"drawdiff/internal/viewer3d"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// The viewer probe only runs when 3D capture is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Log directory", cfg.Paths.LogDir)}

	historyDir := filepath.Dir(cfg.Paths.HistoryDB)
	if filepath.Clean(historyDir) != filepath.Clean(cfg.Paths.LogDir) {
		results = append(results, CheckDirectoryAccess("History directory", historyDir))
	}

	if cfg.Viewer3D.Enabled {
		results = append(results, CheckViewer(ctx, viewer3d.New(cfg.Viewer3D)))
	}

	return results
}
