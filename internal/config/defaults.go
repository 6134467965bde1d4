package config

const (
	defaultConfigPath          = "~/.config/drawdiff/config.toml"
	projectConfigName          = "drawdiff.toml"
	envPDFDiff                 = "DRAWDIFF_PDFDIFF"
	defaultHistoryName         = "history.db"
	defaultPDFDiffBinary       = "diff-pdf"
	defaultPDFDiffTimeout      = 300
	defaultOutputSuffix        = "-Redline"
	defaultViewerCommand       = "python3"
	defaultProbeCommand        = "python3"
	defaultScreenshotName      = "screenshot.png"
	defaultErrorLogName        = "diff3d_error.log"
	defaultViewerTimeout       = 1800
	defaultSimilarityThreshold = 0.6
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogMaxSizeMB        = 10
	defaultLogMaxBackups       = 3
	defaultLogMaxAgeDays       = 30
)

var (
	defaultViewerArgs     = []string{"-c", "{viewer_script}", "{step_a}", "{step_b}", "{save_dir}", "{screenshot}", "{error_log}"}
	defaultProbeArgs      = []string{"-c", "import diff3d, pyvista, build123d"}
	defaultStepExtensions = []string{".step", ".stp", ".STEP", ".STP"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir(),
		},
		PDFDiff: PDFDiff{
			Binary:         defaultPDFDiffBinary,
			TimeoutSeconds: defaultPDFDiffTimeout,
			OutputSuffix:   defaultOutputSuffix,
		},
		Viewer3D: Viewer3D{
			Enabled:        true,
			Command:        defaultViewerCommand,
			Args:           cloneStrings(defaultViewerArgs),
			ProbeCommand:   defaultProbeCommand,
			ProbeArgs:      cloneStrings(defaultProbeArgs),
			ScreenshotName: defaultScreenshotName,
			ErrorLogName:   defaultErrorLogName,
			TimeoutSeconds: defaultViewerTimeout,
			StepExtensions: cloneStrings(defaultStepExtensions),
		},
		Autofill: Autofill{
			Enabled:             true,
			SimilarityThreshold: defaultSimilarityThreshold,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
