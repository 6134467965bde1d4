// Package compare coordinates a drawing comparison.
//
// Session models the two file slots (A is the original, B the comparison)
// and proposes the missing companion through the revision matcher: filling A
// looks for the next revision to put in B, filling B looks for the previous
// revision to put in A. Proposals never cascade; a slot filled by a proposal
// does not trigger another one.
//
// Runner validates both inputs, renders the PDF redline, optionally runs the
// STEP viewer on matching models, and records the run in history.
package compare
