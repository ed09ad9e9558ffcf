package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"autotex/internal/config"
	"autotex/internal/daemonclient"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiClient builds a daemon API client from the --api flag or the configured
// bind address.
func (c *commandContext) apiClient() (*daemonclient.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	bind := ""
	if c.apiFlag != nil {
		bind = strings.TrimSpace(*c.apiFlag)
	}
	token := ""
	if cfg != nil {
		if bind == "" {
			bind = cfg.Paths.APIBind
		}
		token = cfg.Paths.APIToken
	}

	client, err := daemonclient.New(bind, token)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, daemonclient.ErrAPIUnavailable
	}
	return client, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
