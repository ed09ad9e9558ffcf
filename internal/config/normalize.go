package config

import (
	"fmt"
	"strings"
)

// normalize expands path fields and trims free-form values so validation and
// later use see canonical data.
func (c *Config) normalize() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("normalize log_dir: %w", err)
	}
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("normalize cache dir: %w", err)
	}
	if c.Annotator.RulesPath = strings.TrimSpace(c.Annotator.RulesPath); c.Annotator.RulesPath != "" {
		if c.Annotator.RulesPath, err = expandPath(c.Annotator.RulesPath); err != nil {
			return fmt.Errorf("normalize rules_path: %w", err)
		}
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	c.Compiler.BaseURL = strings.TrimRight(strings.TrimSpace(c.Compiler.BaseURL), "/")
	c.Compiler.AuthToken = strings.TrimSpace(c.Compiler.AuthToken)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Compiler.RequestTimeout <= 0 {
		c.Compiler.RequestTimeout = defaultCompilerTimeout
	}
	if c.Cache.RetentionDays <= 0 {
		c.Cache.RetentionDays = defaultCacheRetentionDays
	}
	return nil
}
