// Package logging constructs the slog loggers used across autotex.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for ingestion. NewFromConfig mirrors daemon conventions by
// teeing output to stdout and a log file under the configured log directory.
package logging
