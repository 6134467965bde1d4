package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePDFDiff()
	c.normalizeViewer3D()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir()
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = filepath.Join(c.Paths.LogDir, defaultHistoryName)
	}
	if c.Paths.HistoryDB, err = expandPath(strings.TrimSpace(c.Paths.HistoryDB)); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizePDFDiff() {
	c.PDFDiff.Binary = strings.TrimSpace(c.PDFDiff.Binary)
	if c.PDFDiff.Binary == "" {
		c.PDFDiff.Binary = defaultPDFDiffBinary
	}
	if strings.HasPrefix(c.PDFDiff.Binary, "~") {
		if expanded, err := expandPath(c.PDFDiff.Binary); err == nil {
			c.PDFDiff.Binary = expanded
		}
	}
}

func (c *Config) normalizeViewer3D() {
	c.Viewer3D.Command = strings.TrimSpace(c.Viewer3D.Command)
	if c.Viewer3D.Command == "" {
		c.Viewer3D.Command = defaultViewerCommand
	}
	if len(c.Viewer3D.Args) == 0 {
		c.Viewer3D.Args = cloneStrings(defaultViewerArgs)
	}
	c.Viewer3D.ProbeCommand = strings.TrimSpace(c.Viewer3D.ProbeCommand)
	if c.Viewer3D.ProbeCommand == "" {
		c.Viewer3D.ProbeCommand = defaultProbeCommand
		if len(c.Viewer3D.ProbeArgs) == 0 {
			c.Viewer3D.ProbeArgs = cloneStrings(defaultProbeArgs)
		}
	}
	c.Viewer3D.ScreenshotName = strings.TrimSpace(c.Viewer3D.ScreenshotName)
	if c.Viewer3D.ScreenshotName == "" {
		c.Viewer3D.ScreenshotName = defaultScreenshotName
	}
	c.Viewer3D.ErrorLogName = strings.TrimSpace(c.Viewer3D.ErrorLogName)
	if c.Viewer3D.ErrorLogName == "" {
		c.Viewer3D.ErrorLogName = defaultErrorLogName
	}

	exts := make([]string, 0, len(c.Viewer3D.StepExtensions))
	seen := make(map[string]struct{}, len(c.Viewer3D.StepExtensions))
	for _, ext := range c.Viewer3D.StepExtensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, exists := seen[ext]; exists {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = cloneStrings(defaultStepExtensions)
	}
	c.Viewer3D.StepExtensions = exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
