// Package compiler is the HTTP client for the external compiler service that
// runs TeX jobs and stores their transcripts and previews.
//
// The client covers the four collaborator operations the rest of autotex
// needs: start a compilation for a source/checksum pair, poll its status,
// fetch the raw transcript, and stream the PDF preview. Missing artifacts are
// reported with ErrNotFound and upstream failures with ErrTransient so
// callers can map them with errors.Is instead of inspecting status codes.
package compiler
