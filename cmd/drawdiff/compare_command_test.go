package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drawdiff/internal/testsupport"
)

func writeDrawings(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		testsupport.WritePDF(t, filepath.Join(dir, name))
	}
}

func TestCompareAutofillsAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "drawings")
	writeDrawings(t, dir, "Widget_Rev1.pdf", "Widget_Rev2.pdf")

	out, _, err := runCLI(t, []string{"compare", filepath.Join(dir, "Widget_Rev1.pdf")}, env.configPath)
	if err != nil {
		t.Fatalf("compare: %v\n%s", err, out)
	}
	requireContains(t, out, "Auto-filled: Widget_Rev2.pdf")
	requireContains(t, out, "Differences found")
	requireContains(t, out, "(1 page)")

	redline := filepath.Join(dir, "Widget_Rev2-Redline.pdf")
	if _, err := os.Stat(redline); err != nil {
		t.Fatalf("expected redline at %s: %v", redline, err)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []historyRunJSON
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.PDFResult != "different" || run.Outcome != "ok" || run.ModelResult != "skipped" {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Output != redline || run.PagesA != 1 {
		t.Fatalf("unexpected run paths %+v", run)
	}

	out, _, err = runCLI(t, []string{"history", "show", run.ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, run.ID)
	requireContains(t, out, "different (exit 1)")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "Widget_Rev1.pdf")

	for _, blank := range []string{"", "   "} {
		if _, _, err := runCLI(t, []string{"history", "show", blank}, env.configPath); err == nil || !strings.Contains(err.Error(), "must not be empty") {
			t.Fatalf("history show %q: expected empty id error, got %v", blank, err)
		}
	}

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 run")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history after clear: %v", err)
	}
	requireContains(t, out, "No comparison runs recorded")
}

func TestCompareExplicitPairAndOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "drawings")
	writeDrawings(t, dir, "Bracket-01.pdf", "Bracket-03.pdf", "Bracket-02.pdf")
	output := filepath.Join(env.baseDir, "out", "diff.pdf")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{
		"compare", "--output", output,
		filepath.Join(dir, "Bracket-01.pdf"), filepath.Join(dir, "Bracket-03.pdf"),
	}, env.configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if strings.Contains(out, "Auto-filled") {
		t.Fatalf("explicit pair should not auto-fill:\n%s", out)
	}
	requireContains(t, out, "Bracket-03.pdf")
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected custom output: %v", err)
	}
}

func TestCompareNoPairFails(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "drawings")
	writeDrawings(t, dir, "Widget_Rev3.pdf", "Widget_Rev1.pdf")

	_, _, err := runCLI(t, []string{"compare", filepath.Join(dir, "Widget_Rev3.pdf")}, env.configPath)
	if err == nil {
		t.Fatal("expected error without a next revision")
	}
	requireContains(t, err.Error(), "no matching pair")
}

func TestCompareNoAutofill(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "drawings")
	writeDrawings(t, dir, "Widget_Rev1.pdf", "Widget_Rev2.pdf")

	_, _, err := runCLI(t, []string{"compare", "--no-autofill", filepath.Join(dir, "Widget_Rev1.pdf")}, env.configPath)
	if err == nil {
		t.Fatal("expected error when auto-fill is disabled and B is missing")
	}
	requireContains(t, err.Error(), "select both files")
}

func TestCompareRejectsNonPDF(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "drawings")
	testsupport.WriteFile(t, filepath.Join(dir, "Widget_Rev1.pdf"), 32)
	writeDrawings(t, dir, "Widget_Rev2.pdf")

	_, _, err := runCLI(t, []string{"compare", filepath.Join(dir, "Widget_Rev1.pdf")}, env.configPath)
	if err == nil {
		t.Fatal("expected validation error for non-PDF content")
	}

	out, _, err := runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []historyRunJSON
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(runs) != 1 || runs[0].Outcome != "invalid" || runs[0].PDFResult != "not_run" {
		t.Fatalf("expected invalid run recorded, got %+v", runs)
	}
}
