// Package history persists comparison runs in a small SQLite database so the
// CLI can list what was compared, where the redline went, and how each tool
// exited.
//
// The schema is embedded and versioned; a database written by a different
// schema version is rejected with ErrSchemaMismatch and must be cleared.
package history
