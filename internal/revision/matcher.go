package revision

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"drawdiff/internal/logging"
	"drawdiff/internal/textutil"
)

// DefaultSimilarityCutoff is the minimum similarity ratio accepted by the
// fallback when the reference name carries no revision token.
const DefaultSimilarityCutoff = 0.6

// Mode selects the direction of a revision search.
type Mode int

const (
	// Next looks for the smallest revision greater than the reference.
	Next Mode = iota
	// Prev looks for the largest revision lower than the reference.
	Prev
)

func (m Mode) String() string {
	switch m {
	case Next:
		return "next"
	case Prev:
		return "prev"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts "next"/"prev" (case-insensitive) to a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "next", "":
		return Next, nil
	case "prev", "previous":
		return Prev, nil
	default:
		return Next, fmt.Errorf("unknown pairing mode %q (want next or prev)", value)
	}
}

// Strategy records how a pair was selected.
type Strategy string

const (
	StrategyRevision   Strategy = "revision"
	StrategySimilarity Strategy = "similarity"
)

// Match is a resolved pairing proposal.
type Match struct {
	Path     string
	Name     string
	Strategy Strategy
	// Revision is the numeric revision of the match (revision strategy only).
	Revision int
	// Score is the similarity ratio (similarity strategy only).
	Score float64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSimilarityCutoff overrides the similarity fallback cutoff. Values
// outside (0, 1] are ignored.
func WithSimilarityCutoff(cutoff float64) Option {
	return func(m *Matcher) {
		if cutoff > 0 && cutoff <= 1 {
			m.cutoff = cutoff
		}
	}
}

// WithLogger attaches a logger used for pairing decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Matcher proposes the companion file of a reference document. The zero
// value is not usable; construct with NewMatcher.
type Matcher struct {
	cutoff float64
	logger *slog.Logger
}

// NewMatcher constructs a matcher with the default cutoff and a no-op logger.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		cutoff: DefaultSimilarityCutoff,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "revision")
	return m
}

// Cutoff returns the similarity cutoff in effect.
func (m *Matcher) Cutoff() float64 {
	return m.cutoff
}

var defaultMatcher = NewMatcher()

// FindPair proposes the companion of reference using default settings.
func FindPair(reference string, mode Mode) (string, bool) {
	match, ok := defaultMatcher.FindPair(reference, mode)
	return match.Path, ok
}

// FindPair proposes the companion of reference in the given direction. A
// missing reference, an unreadable directory, or a directory with no
// qualifying file all yield ok=false.
func (m *Matcher) FindPair(reference string, mode Mode) (Match, bool) {
	info, err := os.Stat(reference)
	if err != nil || info.IsDir() {
		m.decide(reference, mode, "skipped", "reference is not an existing file")
		return Match{}, false
	}

	dir := filepath.Dir(reference)
	name := filepath.Base(reference)
	stem, _ := SplitExt(name)

	candidates, err := Candidates(reference)
	if err != nil {
		logging.WarnWithContext(m.logger, "candidate listing failed", "pair_listing_failed",
			logging.String("reference", reference),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no pair proposed"),
		)
		return Match{}, false
	}

	tok, ok := Extract(stem)
	var match Match
	var found bool
	if ok {
		match, found = m.byRevision(tok, candidates, mode)
	} else {
		match, found = m.bySimilarity(name, candidates)
	}
	if !found {
		reason := "no candidate qualifies"
		if len(candidates) == 0 {
			reason = "no candidates share the extension"
		}
		m.decide(reference, mode, "none", reason)
		return Match{}, false
	}
	match.Path = filepath.Join(dir, match.Name)
	m.decide(reference, mode, match.Name, string(match.Strategy))
	return match, true
}

func (m *Matcher) byRevision(ref Token, candidates []string, mode Mode) (Match, bool) {
	current, err := ref.Revision()
	if err != nil {
		m.logger.Debug("reference revision unparseable", logging.Args(
			logging.String("number", ref.Number),
			logging.Error(err),
		)...)
		return Match{}, false
	}

	type ranked struct {
		revision int
		name     string
	}
	eligible := make([]ranked, 0, len(candidates))
	for _, name := range candidates {
		stem, _ := SplitExt(name)
		tok, ok := Extract(stem)
		if !ok || !textutil.EqualFold(tok.Prefix, ref.Prefix) {
			continue
		}
		rev, err := tok.Revision()
		if err != nil {
			continue
		}
		eligible = append(eligible, ranked{revision: rev, name: name})
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].revision < eligible[j].revision
	})

	switch mode {
	case Next:
		for _, c := range eligible {
			if c.revision > current {
				return Match{Name: c.name, Strategy: StrategyRevision, Revision: c.revision}, true
			}
		}
	case Prev:
		for i := len(eligible) - 1; i >= 0; i-- {
			if eligible[i].revision < current {
				c := eligible[i]
				return Match{Name: c.name, Strategy: StrategyRevision, Revision: c.revision}, true
			}
		}
	}
	return Match{}, false
}

func (m *Matcher) bySimilarity(name string, candidates []string) (Match, bool) {
	best, score, ok := textutil.CloseMatch(name, candidates, m.cutoff)
	if !ok {
		return Match{}, false
	}
	return Match{Name: best, Strategy: StrategySimilarity, Score: score}, true
}

func (m *Matcher) decide(reference string, mode Mode, result, reason string) {
	attrs := logging.DecisionAttrs("revision_pair", result, reason)
	attrs = append(attrs,
		logging.String("reference", filepath.Base(reference)),
		logging.String(logging.FieldMode, mode.String()),
	)
	m.logger.Debug("pair decision", logging.Args(attrs...)...)
}
