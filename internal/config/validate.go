package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration invariants that cannot be repaired by
// normalization. Credentials are validated lazily by the clients that use
// them so read-only commands work without a full configuration.
func (c *Config) Validate() error {
	var problems []string

	if !strings.HasPrefix(c.TMDB.BaseURL, "http://") && !strings.HasPrefix(c.TMDB.BaseURL, "https://") {
		problems = append(problems, fmt.Sprintf("tmdb.base_url %q must be an http(s) URL", c.TMDB.BaseURL))
	}
	if !strings.HasPrefix(c.TMDB.ImageBaseURL, "http://") && !strings.HasPrefix(c.TMDB.ImageBaseURL, "https://") {
		problems = append(problems, fmt.Sprintf("tmdb.image_base_url %q must be an http(s) URL", c.TMDB.ImageBaseURL))
	}
	if c.Catalog.BaseURL != "" && !strings.HasPrefix(c.Catalog.BaseURL, "http://") && !strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		problems = append(problems, fmt.Sprintf("catalog.base_url %q must be an http(s) URL", c.Catalog.BaseURL))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q must be debug, info, warn, or error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RequireTMDB returns an error when the TMDB API key is missing.
func (c *Config) RequireTMDB() error {
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		return fmt.Errorf("tmdb.api_key is required (or set TMDB_API_KEY)")
	}
	return nil
}

// RequireCatalog returns an error when destination store credentials are missing.
func (c *Config) RequireCatalog() error {
	var missing []string
	if c.Catalog.BaseURL == "" {
		missing = append(missing, "catalog.base_url")
	}
	if c.Catalog.Token == "" {
		missing = append(missing, "catalog.token (or CATALOG_TOKEN)")
	}
	if c.Catalog.DatabaseID == "" {
		missing = append(missing, "catalog.database_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing catalog configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
