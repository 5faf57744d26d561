package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTMDB(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeWorkflow()
	c.normalizeLogging()
	if err := c.normalizeResolveCache(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeTMDB() error {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimSpace(c.TMDB.ImageBaseURL)
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	if c.Catalog.Token == "" {
		if value, ok := os.LookupEnv("CATALOG_TOKEN"); ok {
			c.Catalog.Token = value
		}
	}
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	c.Catalog.Token = strings.TrimSpace(c.Catalog.Token)
	c.Catalog.DatabaseID = strings.TrimSpace(c.Catalog.DatabaseID)
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.PollInterval <= 0 {
		c.Workflow.PollInterval = defaultPollInterval
	}
	if c.Workflow.FullRefreshInterval <= 0 {
		c.Workflow.FullRefreshInterval = defaultFullRefreshInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.DuplicateArchiveWait <= 0 {
		c.Workflow.DuplicateArchiveWait = defaultDuplicateArchiveWait
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeResolveCache() error {
	if strings.TrimSpace(c.ResolveCache.Path) == "" {
		c.ResolveCache.Path = defaultResolveCachePath
	}
	expanded, err := expandPath(c.ResolveCache.Path)
	if err != nil {
		return fmt.Errorf("resolve_cache.path: %w", err)
	}
	c.ResolveCache.Path = expanded
	if c.ResolveCache.TTLHours <= 0 {
		c.ResolveCache.TTLHours = defaultResolveCacheTTLHours
	}
	return nil
}
