// Package revision infers the companion file of a document from filename
// conventions.
//
// Names are decomposed into a Token (prefix, separator, number, suffix) by an
// ordered list of rules: explicit revision markers ("Rev", "v") are tried
// before plain numeric delimiters ("_", "-"), and the first rule that matches
// wins. Prefixes are greedy, so the last marker in a name is the one captured.
//
// FindPair walks the reference file's directory and proposes the next or
// previous revision sharing the reference prefix. References that carry no
// token fall back to the most similar filename above a similarity cutoff.
// Lookups only read the filesystem, keep no state between calls, and report
// every failure as "no match"; they are safe to call concurrently.
package revision
