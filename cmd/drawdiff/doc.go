// Package main hosts the drawdiff CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes revision pairing (pair, tokens,
// candidates), comparison runs with auto-fill (compare), run history, tool
// readiness (status), and configuration scaffolding. Configuration and the
// logger are resolved once per invocation in commandContext so subcommands
// only deal with presentation.
package main
