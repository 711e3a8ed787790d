package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"textsummarizer/internal/config"
	"textsummarizer/internal/logging"
)

type globalFlags struct {
	configPath string
	paramsPath string
	logLevel   string
	logFormat  string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(c.configPath(), c.paramsPath(), c.bootstrapLogger())
		if err != nil {
			c.configErr = err
			return
		}
		if level := c.logLevelOverride(); level != "" {
			cfg.Logging.Level = level
		}
		if format := c.logFormatOverride(); format != "" {
			cfg.Logging.Format = format
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.flags == nil {
		return ""
	}
	return strings.TrimSpace(c.flags.configPath)
}

func (c *commandContext) paramsPath() string {
	if c.flags == nil {
		return ""
	}
	return strings.TrimSpace(c.flags.paramsPath)
}

func (c *commandContext) logLevelOverride() string {
	if c.flags == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.flags.logLevel))
}

func (c *commandContext) logFormatOverride() string {
	if c.flags == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.flags.logFormat))
}

// bootstrapLogger writes to stderr until the run logger exists, so stdout
// stays clean for command output.
func (c *commandContext) bootstrapLogger() *slog.Logger {
	logger, err := logging.New(logging.Options{
		Level:       c.logLevelOverride(),
		Format:      c.logFormatOverride(),
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
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
