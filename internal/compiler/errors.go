package compiler

import "errors"

var (
	// ErrNotFound indicates the requested compilation, log, or preview does
	// not exist yet.
	ErrNotFound = errors.New("not found")
	// ErrTransient indicates an upstream failure worth retrying.
	ErrTransient = errors.New("transient compiler failure")
	// ErrUnavailable indicates the client has no configured service URL.
	ErrUnavailable = errors.New("compiler service unavailable")
)
