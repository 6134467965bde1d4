package revision_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"drawdiff/internal/revision"
	"drawdiff/internal/testsupport"
)

func seedDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(dir, name), 16)
	}
	return dir
}

func assertPair(t *testing.T, reference string, mode revision.Mode, want string) {
	t.Helper()
	got, ok := revision.FindPair(reference, mode)
	if want == "" {
		if ok {
			t.Fatalf("FindPair(%s, %s) = %q, want no match", filepath.Base(reference), mode, got)
		}
		return
	}
	if !ok {
		t.Fatalf("FindPair(%s, %s) found no match, want %s", filepath.Base(reference), mode, want)
	}
	if got != filepath.Join(filepath.Dir(reference), want) {
		t.Fatalf("FindPair(%s, %s) = %q, want %s", filepath.Base(reference), mode, got, want)
	}
}

func TestFindPairWidgetScenario(t *testing.T) {
	dir := seedDir(t, "Widget_Rev1.step", "Widget_Rev2.step", "Widget_Rev5.step")

	assertPair(t, filepath.Join(dir, "Widget_Rev2.step"), revision.Next, "Widget_Rev5.step")
	assertPair(t, filepath.Join(dir, "Widget_Rev5.step"), revision.Prev, "Widget_Rev2.step")
	assertPair(t, filepath.Join(dir, "Widget_Rev5.step"), revision.Next, "")
	assertPair(t, filepath.Join(dir, "Widget_Rev1.step"), revision.Prev, "")
}

func TestFindPairPlainDelimiter(t *testing.T) {
	dir := seedDir(t, "Drawing-01.pdf", "Drawing-02.pdf")

	assertPair(t, filepath.Join(dir, "Drawing-01.pdf"), revision.Next, "Drawing-02.pdf")
	assertPair(t, filepath.Join(dir, "Drawing-02.pdf"), revision.Prev, "Drawing-01.pdf")
}

func TestFindPairMonotonic(t *testing.T) {
	dir := seedDir(t, "Bracket_Rev1.pdf", "Bracket_Rev2.pdf", "Bracket_Rev3.pdf")
	ref := filepath.Join(dir, "Bracket_Rev2.pdf")

	assertPair(t, ref, revision.Next, "Bracket_Rev3.pdf")
	assertPair(t, ref, revision.Prev, "Bracket_Rev1.pdf")
}

func TestFindPairIsIdempotent(t *testing.T) {
	dir := seedDir(t, "Bracket_Rev1.pdf", "Bracket_Rev2.pdf", "Bracket_Rev3.pdf", "notes.pdf")
	ref := filepath.Join(dir, "Bracket_Rev2.pdf")

	first, ok := revision.FindPair(ref, revision.Next)
	if !ok {
		t.Fatal("expected match")
	}
	for i := 0; i < 5; i++ {
		again, ok := revision.FindPair(ref, revision.Next)
		if !ok || again != first {
			t.Fatalf("call %d returned (%q, %v), want (%q, true)", i, again, ok, first)
		}
	}
}

func TestFindPairNeverReturnsReference(t *testing.T) {
	dir := seedDir(t, "Widget_Rev2.step", "notes.pdf")

	assertPair(t, filepath.Join(dir, "Widget_Rev2.step"), revision.Next, "")
	assertPair(t, filepath.Join(dir, "Widget_Rev2.step"), revision.Prev, "")
	// Similarity against itself would be 1.0.
	assertPair(t, filepath.Join(dir, "notes.pdf"), revision.Next, "")
}

func TestFindPairPrefixIsolation(t *testing.T) {
	dir := seedDir(t, "PartA_Rev2.pdf", "PartB_Rev3.pdf")

	assertPair(t, filepath.Join(dir, "PartA_Rev2.pdf"), revision.Next, "")
}

func TestFindPairPrefixIgnoresCaseAndSeparator(t *testing.T) {
	// The prefix check is case-insensitive and ignores the separator and
	// suffix, so "PartA_1" pairs with "PARTA-9".
	dir := seedDir(t, "PartA_1.pdf", "PARTA-9.pdf")

	assertPair(t, filepath.Join(dir, "PartA_1.pdf"), revision.Next, "PARTA-9.pdf")
	assertPair(t, filepath.Join(dir, "PARTA-9.pdf"), revision.Prev, "PartA_1.pdf")
}

func TestFindPairMixedMarkers(t *testing.T) {
	// A plain greedy split reads "Housing_Rev1" as prefix "Housing_Re" and
	// "Housing_v2" as prefix "Housing_", which would keep them apart.
	// widenMarker moves "Re" back into the marker so both share "Housing_"
	// and pair across marker styles.
	dir := seedDir(t, "Housing_Rev1.pdf", "Housing_v2.pdf", "Housing_REV4_signed.pdf")

	assertPair(t, filepath.Join(dir, "Housing_Rev1.pdf"), revision.Next, "Housing_v2.pdf")
	assertPair(t, filepath.Join(dir, "Housing_v2.pdf"), revision.Next, "Housing_REV4_signed.pdf")
}

func TestFindPairFallbackThreshold(t *testing.T) {
	dir := seedDir(t, "final_report.pdf", "final_report_v2.pdf")
	assertPair(t, filepath.Join(dir, "final_report.pdf"), revision.Next, "final_report_v2.pdf")

	unrelated := seedDir(t, "final_report.pdf", "unrelated_document.pdf")
	assertPair(t, filepath.Join(unrelated, "final_report.pdf"), revision.Next, "")
}

func TestFindPairFallbackReportsScore(t *testing.T) {
	dir := seedDir(t, "final_report.pdf", "final_report_v2.pdf", "final_rep.pdf")

	match, ok := revision.NewMatcher().FindPair(filepath.Join(dir, "final_report.pdf"), revision.Prev)
	if !ok {
		t.Fatal("expected similarity match")
	}
	if match.Strategy != revision.StrategySimilarity {
		t.Fatalf("strategy = %q, want similarity", match.Strategy)
	}
	if match.Name != "final_report_v2.pdf" {
		t.Fatalf("match = %q, want final_report_v2.pdf", match.Name)
	}
	if match.Score < 0.9 || match.Score > 1 {
		t.Fatalf("unexpected score %v", match.Score)
	}
}

func TestFindPairSimilarityCutoffOption(t *testing.T) {
	dir := seedDir(t, "final_report.pdf", "final_report_v2.pdf")
	ref := filepath.Join(dir, "final_report.pdf")

	strict := revision.NewMatcher(revision.WithSimilarityCutoff(0.95))
	if match, ok := strict.FindPair(ref, revision.Next); ok {
		t.Fatalf("expected no match with strict cutoff, got %q", match.Name)
	}
	if strict.Cutoff() != 0.95 {
		t.Fatalf("Cutoff() = %v, want 0.95", strict.Cutoff())
	}
	ignored := revision.NewMatcher(revision.WithSimilarityCutoff(1.5))
	if ignored.Cutoff() != revision.DefaultSimilarityCutoff {
		t.Fatalf("out-of-range cutoff should be ignored, got %v", ignored.Cutoff())
	}
}

func TestFindPairTokenSuppressesFallback(t *testing.T) {
	// A near-identical name exists, but the reference carries a revision
	// token so only numeric candidates are considered.
	dir := seedDir(t, "Widget_Rev2.pdf", "Widget_Rev2_copy.pdf", "Widget Rev2.pdf")

	assertPair(t, filepath.Join(dir, "Widget_Rev2.pdf"), revision.Next, "")
	assertPair(t, filepath.Join(dir, "Widget_Rev2.pdf"), revision.Prev, "")
}

func TestFindPairExtensionFilter(t *testing.T) {
	dir := seedDir(t, "Drawing-01.pdf", "Drawing-02.PDF", "Drawing-03.dwg")

	assertPair(t, filepath.Join(dir, "Drawing-01.pdf"), revision.Next, "Drawing-02.PDF")
	assertPair(t, filepath.Join(dir, "Drawing-02.PDF"), revision.Next, "")
}

func TestFindPairSkipsDirectories(t *testing.T) {
	dir := seedDir(t, "Widget_Rev1.step", "Widget_Rev4.step")
	if err := os.Mkdir(filepath.Join(dir, "Widget_Rev2.step"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	assertPair(t, filepath.Join(dir, "Widget_Rev1.step"), revision.Next, "Widget_Rev4.step")
}

func TestFindPairMissingReference(t *testing.T) {
	dir := seedDir(t, "Widget_Rev1.step", "Widget_Rev2.step")

	assertPair(t, filepath.Join(dir, "Widget_Rev0.step"), revision.Next, "")
	assertPair(t, filepath.Join(t.TempDir(), "gone", "Widget_Rev1.step"), revision.Next, "")
	assertPair(t, dir, revision.Next, "")
}

func TestFindPairEmptyDirectory(t *testing.T) {
	dir := seedDir(t, "lonely.pdf")
	assertPair(t, filepath.Join(dir, "lonely.pdf"), revision.Next, "")
}

func TestFindPairUnparseableCandidateIsExcluded(t *testing.T) {
	dir := seedDir(t, "Widget_Rev2.step", "Widget_Rev5.step", "Widget_Rev99999999999999999999999999.step")

	assertPair(t, filepath.Join(dir, "Widget_Rev2.step"), revision.Next, "Widget_Rev5.step")
	assertPair(t, filepath.Join(dir, "Widget_Rev5.step"), revision.Next, "")
}

func TestFindPairUnparseableReferenceHasNoFallback(t *testing.T) {
	dir := seedDir(t, "Widget_Rev99999999999999999999999999.step", "Widget_Rev99999999999999999999999998.step")

	assertPair(t, filepath.Join(dir, "Widget_Rev99999999999999999999999999.step"), revision.Prev, "")
}

func TestFindPairEqualRevisionsUseListingOrder(t *testing.T) {
	dir := seedDir(t, "Widget_Rev2.step", "Widget_v3.step", "Widget_Rev3.step")

	// os.ReadDir lists names sorted; "Widget_Rev3" sorts before "Widget_v3".
	assertPair(t, filepath.Join(dir, "Widget_Rev2.step"), revision.Next, "Widget_Rev3.step")
}

func TestFindPairConcurrentCalls(t *testing.T) {
	dir := seedDir(t, "Widget_Rev1.step", "Widget_Rev2.step", "Widget_Rev5.step")
	matcher := revision.NewMatcher()
	ref := filepath.Join(dir, "Widget_Rev2.step")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(mode revision.Mode) {
			defer wg.Done()
			want := "Widget_Rev5.step"
			if mode == revision.Prev {
				want = "Widget_Rev1.step"
			}
			match, ok := matcher.FindPair(ref, mode)
			if !ok || match.Name != want {
				errs <- match.Name
			}
		}(revision.Mode(i % 2))
	}
	wg.Wait()
	close(errs)
	for name := range errs {
		t.Fatalf("concurrent lookup returned %q", name)
	}
}

func TestFindPairRevisionMatchDetails(t *testing.T) {
	dir := seedDir(t, "Widget_Rev1.step", "Widget_Rev2.step", "Widget_Rev5.step")

	match, ok := revision.NewMatcher().FindPair(filepath.Join(dir, "Widget_Rev2.step"), revision.Next)
	if !ok {
		t.Fatal("expected match")
	}
	if match.Strategy != revision.StrategyRevision || match.Revision != 5 {
		t.Fatalf("unexpected match %#v", match)
	}
	if match.Path != filepath.Join(dir, "Widget_Rev5.step") {
		t.Fatalf("unexpected path %q", match.Path)
	}
}

func TestCandidates(t *testing.T) {
	dir := seedDir(t, "a.pdf", "b.PDF", "c.step", "ref.pdf")
	if err := os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := revision.Candidates(filepath.Join(dir, "ref.pdf"))
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	want := []string{"a.pdf", "b.PDF"}
	if len(got) != len(want) {
		t.Fatalf("Candidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Candidates() = %v, want %v", got, want)
		}
	}

	if _, err := revision.Candidates(filepath.Join(dir, "missing", "ref.pdf")); err == nil {
		t.Fatal("expected error listing a missing directory")
	}
}

func TestFindPairSkipsOtherNamesForReference(t *testing.T) {
	t.Run("hard link", func(t *testing.T) {
		dir := seedDir(t, "Widget_Rev1.step", "Widget_Rev2.step")
		if err := os.Link(filepath.Join(dir, "Widget_Rev2.step"), filepath.Join(dir, "Widget_Rev3.step")); err != nil {
			t.Skipf("hard links unsupported: %v", err)
		}
		assertPair(t, filepath.Join(dir, "Widget_Rev2.step"), revision.Next, "")
		assertPair(t, filepath.Join(dir, "Widget_Rev2.step"), revision.Prev, "Widget_Rev1.step")
	})

	t.Run("symlinked reference", func(t *testing.T) {
		dir := seedDir(t, "Widget_Rev4.step")
		if err := os.Symlink("Widget_Rev4.step", filepath.Join(dir, "Widget_Rev2.step")); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
		assertPair(t, filepath.Join(dir, "Widget_Rev2.step"), revision.Next, "")

		got, err := revision.Candidates(filepath.Join(dir, "Widget_Rev2.step"))
		if err != nil {
			t.Fatalf("Candidates returned error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("Candidates() = %v, want none", got)
		}
	})
}

func TestParseMode(t *testing.T) {
	cases := map[string]revision.Mode{
		"next":     revision.Next,
		"NEXT":     revision.Next,
		"":         revision.Next,
		"prev":     revision.Prev,
		"Previous": revision.Prev,
	}
	for input, want := range cases {
		got, err := revision.ParseMode(input)
		if err != nil {
			t.Fatalf("ParseMode(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseMode(%q) = %s, want %s", input, got, want)
		}
	}
	if _, err := revision.ParseMode("sideways"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
