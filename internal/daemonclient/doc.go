// Package daemonclient provides the HTTP client the CLI uses to talk to a
// running autotexd instance.
package daemonclient
