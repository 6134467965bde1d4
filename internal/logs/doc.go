// Package logs tails the drawdiff log file for the CLI.
//
// Reads use bounded memory, negative offsets select the last N lines, and
// follow mode polls until new lines arrive or the caller's context ends. An
// optional substring filter narrows output to one comparison run.
package logs
