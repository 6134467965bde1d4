// Package textutil provides text comparison helpers shared by the filename
// matchers.
//
// The primary use cases are:
//   - Sequence-similarity ratios between filenames (longest matching blocks)
//   - Picking the closest filename from a candidate list above a cutoff
//   - Case folding for case-insensitive comparisons of name fragments
//
// Similarity works on Unicode code points, so multi-byte characters count as
// a single element on both sides of the comparison.
package textutil
