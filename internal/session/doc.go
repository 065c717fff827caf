// Package session persists rip runs and their per-track outcomes in a
// SQLite database, so interrupted runs can be inspected and resumed
// without re-exporting tracks that already finished.
package session
