// Package services defines shared utilities consumed by the comparison
// runner and the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and slot names for logging.
//   - Structured error markers plus the Wrap helper, and Classify which turns
//     a failure into the outcome label stored in run history.
//   - The Executor abstraction that makes external tool invocations testable.
//
// Use these helpers when wiring a new tool so error handling and
// observability stay uniform across commands.
package services
