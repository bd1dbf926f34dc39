// Package database keeps the history of classification verdicts in SQLite
// (modernc.org/sqlite, no cgo).
//
// Each row stores the classified URL, the session direction, the blocked
// flag, the confidence, a SHA3-256 digest of the classified input and the
// full serialized record, so that past verdicts can be listed and printed
// with the report writers without re-running the classifiers.
package database
