// Package annocache persists annotated compilation logs in SQLite so the
// daemon can serve repeat log requests without re-running the annotator.
// Entries are keyed by submission id, source checksum, and compilation
// status; Prune evicts entries older than the configured retention window.
package annocache
