package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains log and history locations.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// PDFDiff contains configuration for the external PDF comparison tool.
type PDFDiff struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// OutputSuffix is appended to the comparison file's base name to build the
	// default redline output name.
	OutputSuffix string `toml:"output_suffix"`
}

// Viewer3D contains configuration for the optional STEP model viewer.
//
// Args may reference {step_a}, {step_b}, {save_dir}, {screenshot},
// {error_log} and {viewer_script} (the bundled Python viewer); they are
// substituted per run.
type Viewer3D struct {
	Enabled        bool     `toml:"enabled"`
	Command        string   `toml:"command"`
	Args           []string `toml:"args"`
	ProbeCommand   string   `toml:"probe_command"`
	ProbeArgs      []string `toml:"probe_args"`
	ScreenshotName string   `toml:"screenshot_name"`
	ErrorLogName   string   `toml:"error_log_name"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	StepExtensions []string `toml:"step_extensions"`
}

// Autofill controls companion proposals when one slot is filled.
type Autofill struct {
	Enabled             bool    `toml:"enabled"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for drawdiff.
//
// Configuration sections by subsystem:
//   - Paths: log directory and run history database
//   - PDFDiff: redline tool binary, timeout, and output naming
//   - Viewer3D: STEP viewer command, probe, and screenshot harvesting
//   - Autofill: companion proposals and the similarity cutoff
//   - Logging: log format, level, and rotation
type Config struct {
	Paths    Paths    `toml:"paths"`
	PDFDiff  PDFDiff  `toml:"pdfdiff"`
	Viewer3D Viewer3D `toml:"viewer3d"`
	Autofill Autofill `toml:"autofill"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the configuration at path, or the first existing file among
// the default locations when path is empty. It returns the config, the path
// that was consulted and whether a file was actually read. A missing file
// yields validated defaults.
func Load(path string) (*Config, string, bool, error) {
	source, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}
	cfg := Default()
	if exists {
		if err := decodeFile(source, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, source, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse %s: %s", path, strict.String())
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// locate picks the config file. An explicit path is used whether or not it
// exists; otherwise the user file wins over ./drawdiff.toml, and the user
// path is reported when neither exists.
func locate(explicit string) (string, bool, error) {
	var candidates []string
	if explicit != "" {
		candidates = []string{explicit}
	} else {
		candidates = []string{defaultConfigPath, projectConfigName}
	}
	resolved := make([]string, 0, len(candidates))
	for _, c := range candidates {
		abs, err := expandPath(c)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(abs)
		switch {
		case err == nil && !info.IsDir():
			return abs, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist) && explicit != "":
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		resolved = append(resolved, abs)
	}
	return resolved[0], false, nil
}

// EnsureDirectories creates the log directory and the history database's parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Paths.HistoryDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PDFDiffBinary returns the PDF comparison executable. DRAWDIFF_PDFDIFF
// overrides the configured value.
func (c *Config) PDFDiffBinary() string {
	if value, ok := os.LookupEnv(envPDFDiff); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return c.PDFDiff.Binary
}

// expandPath resolves a leading "~" or "~/" to the home directory and makes
// the result absolute. Empty stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = home + strings.TrimPrefix(value, "~")
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the same "~" and absolute-path rules used for config values.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

func defaultLogDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "drawdiff")
	}
	return "~/.local/state/drawdiff"
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
