package main

import (
	"log/slog"
	"strings"
	"sync"

	"reelsync/internal/config"
	"reelsync/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// quietLogger returns a logger suitable for interactive commands: warnings
// and errors only, console format.
func (c *commandContext) quietLogger() *slog.Logger {
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console"})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}
