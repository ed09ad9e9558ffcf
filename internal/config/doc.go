// Package config loads and validates the TOML configuration shared by the
// autotex CLI and daemon.
//
// Load resolves the configuration file (explicit path, then
// ~/.config/autotex/config.toml, then ./autotex.toml), applies repository
// defaults for anything unset, expands ~ in path fields, and validates the
// result. A missing file is not an error; the defaults alone describe a
// working local setup apart from the compiler service URL.
package config
