package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for errors and returns a descriptive
// message listing every problem found.
func (c *Config) Validate() error {
	var problems []string

	if c.Spotweb.BaseURL == "" {
		problems = append(problems, "spotweb.base_url is required")
	}
	if c.Spotweb.APIKey == "" {
		problems = append(problems, "spotweb.api_key is required")
	}
	if c.Sabnzbd.BaseURL == "" {
		problems = append(problems, "sabnzbd.base_url is required")
	}
	if c.Sabnzbd.APIKey == "" {
		problems = append(problems, "sabnzbd.api_key is required")
	}

	// Catalog integration is optional, but a partial section is a mistake
	// worth surfacing rather than silently running without shelving.
	cw := c.Calibreweb
	cwFields := 0
	for _, v := range []string{cw.URL, cw.Username, cw.Password} {
		if strings.TrimSpace(v) != "" {
			cwFields++
		}
	}
	if cwFields > 0 && cwFields < 3 {
		problems = append(problems, "calibreweb requires url, username, and password together")
	}

	if c.Spotweb.TimeoutSeconds <= 0 {
		problems = append(problems, "spotweb.timeout_seconds must be positive")
	}
	if c.Sabnzbd.TimeoutSeconds <= 0 {
		problems = append(problems, "sabnzbd.timeout_seconds must be positive")
	}
	if c.Calibreweb.TimeoutSeconds <= 0 {
		problems = append(problems, "calibreweb.timeout_seconds must be positive")
	}
	if c.Calibreweb.ShelfCacheTTLSeconds <= 0 {
		problems = append(problems, "calibreweb.shelf_cache_ttl_seconds must be positive")
	}
	if c.Workflow.SearchIntervalSeconds <= 0 {
		problems = append(problems, "workflow.search_interval_seconds must be positive")
	}
	if c.Workflow.ImportIntervalSeconds <= 0 {
		problems = append(problems, "workflow.import_interval_seconds must be positive")
	}
	if c.Workflow.ItemPauseSeconds < 0 {
		problems = append(problems, "workflow.item_pause_seconds must not be negative")
	}
	if c.Workflow.ErrorRetrySeconds <= 0 {
		problems = append(problems, "workflow.error_retry_seconds must be positive")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
