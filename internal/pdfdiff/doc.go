// Package pdfdiff drives the external diff-pdf tool that renders a redline
// of two drawing revisions.
//
// The tool is invoked as `<binary> --output-diff=<out> <B> <A>` with its own
// directory as working directory, so bundled builds find their shared
// libraries. Exit codes map to Identical (0) and Different (1); codes 2 and 3,
// or an "Error opening" message, mean the output could not be written and are
// reported as AccessDenied.
package pdfdiff
