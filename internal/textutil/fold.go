package textutil

import (
	"golang.org/x/text/cases"
)

// FoldCase returns the full Unicode case folding of s for case-insensitive
// equality checks.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal under full case folding.
func EqualFold(a, b string) bool {
	return FoldCase(a) == FoldCase(b)
}
