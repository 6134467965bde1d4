// Package deps reports whether the external binaries drawdiff shells out to
// can be resolved on PATH.
package deps
