package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"drawdiff/internal/config"
)

// ConfigOption adjusts a config produced by NewConfig. base is the temp
// directory that holds the config's log and history paths.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory: logs and the
// history database live under <tmp>/logs and the 3D viewer is off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(cfg.Paths.LogDir, "history.db")
	cfg.Viewer3D.Enabled = false
	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// BaseDir returns the temp directory behind a NewConfig result.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

// WithViewer turns the 3D viewer on with the given viewer and probe commands.
func WithViewer(command, probe string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Viewer3D.Enabled = true
		cfg.Viewer3D.Command = command
		cfg.Viewer3D.ProbeCommand = probe
		cfg.Viewer3D.ProbeArgs = nil
	}
}

// WithStubbedBinaries puts no-op executables named after names (or, when
// empty, the configured diff, viewer and probe commands) first on PATH.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, base string, cfg *config.Config) {
		t.Helper()
		if len(names) == 0 {
			names = []string{cfg.PDFDiff.Binary, cfg.Viewer3D.Command, cfg.Viewer3D.ProbeCommand}
		}
		bin := filepath.Join(base, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", bin, err)
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
