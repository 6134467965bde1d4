package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validatePDFDiff(); err != nil {
		return err
	}
	if err := c.validateAutofill(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		return errors.New("paths.history_db must be set")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"pdfdiff.timeout_seconds":  c.PDFDiff.TimeoutSeconds,
		"viewer3d.timeout_seconds": c.Viewer3D.TimeoutSeconds,
	})
}

func (c *Config) validatePDFDiff() error {
	if strings.ContainsAny(c.PDFDiff.OutputSuffix, `/\`) {
		return fmt.Errorf("pdfdiff.output_suffix %q must not contain path separators", c.PDFDiff.OutputSuffix)
	}
	return nil
}

func (c *Config) validateAutofill() error {
	if c.Autofill.SimilarityThreshold <= 0 || c.Autofill.SimilarityThreshold > 1 {
		return errors.New("autofill.similarity_threshold must be greater than 0 and at most 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB <= 0 {
		return errors.New("logging.max_size_mb must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
