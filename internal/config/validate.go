package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.LogDir == "" {
		return errors.New("log_dir must not be empty")
	}
	if c.Paths.APIBind == "" {
		return errors.New("api_bind must not be empty")
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level: unsupported value %q", c.Logging.Level)
	}

	// The compiler URL is optional for offline CLI use; when present it must
	// at least parse as an absolute URL.
	if c.Compiler.BaseURL != "" {
		parsed, err := url.Parse(c.Compiler.BaseURL)
		if err != nil {
			return fmt.Errorf("compiler base_url: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("compiler base_url %q must be an absolute URL", c.Compiler.BaseURL)
		}
	}
	return nil
}
