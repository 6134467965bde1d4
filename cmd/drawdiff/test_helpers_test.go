package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drawdiff/internal/testsupport"
)

// stubPDFDiff touches the --output-diff target and reports differences.
const stubPDFDiff = `for arg in "$@"; do
  case "$arg" in
    --output-diff=*) : > "${arg#--output-diff=}" ;;
  esac
done
exit 1`

type cliTestEnv struct {
	baseDir    string
	homeDir    string
	logDir     string
	historyDB  string
	configPath string
	pdfDiff    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("DRAWDIFF_PDFDIFF", "")

	env := &cliTestEnv{
		baseDir:   base,
		homeDir:   homeDir,
		logDir:    filepath.Join(base, "logs"),
		historyDB: filepath.Join(base, "logs", "history.db"),
		pdfDiff:   testsupport.WriteScript(t, filepath.Join(base, "bin"), "diff-pdf", stubPDFDiff),
	}
	env.configPath = filepath.Join(base, "drawdiff.toml")
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nlog_dir = %q\nhistory_db = %q\n\n[pdfdiff]\nbinary = %q\n\n[viewer3d]\nenabled = false\n",
		env.logDir,
		env.historyDB,
		env.pdfDiff,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func touchAll(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(dir, name), 8)
	}
}
