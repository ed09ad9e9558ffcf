// Package daemon runs the autotex background service: it enforces
// single-instance execution with a lock file, owns the annotation cache,
// and serves the HTTP API that fronts the compiler service with annotated
// log delivery.
package daemon
