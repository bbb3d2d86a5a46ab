package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Spotweb contains configuration for the Newznab-compatible indexing service.
type Spotweb struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Category       string `toml:"category"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Sabnzbd contains configuration for the download manager.
type Sabnzbd struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Category       string `toml:"category"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Calibreweb contains configuration for the library catalog integration.
// All three of URL, username, and password must be set for shelving to run;
// with any of them empty the import sweep resolves items without a shelf
// step.
type Calibreweb struct {
	URL                  string `toml:"url"`
	Username             string `toml:"username"`
	Password             string `toml:"password"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
	SearchTimeoutSeconds int    `toml:"search_timeout_seconds"`
	ShelfCacheTTLSeconds int    `toml:"shelf_cache_ttl_seconds"`
}

// Workflow contains sweep timing configuration.
type Workflow struct {
	SearchIntervalSeconds int `toml:"search_interval_seconds"`
	ImportIntervalSeconds int `toml:"import_interval_seconds"`
	ItemPauseSeconds      int `toml:"item_pause_seconds"`
	ErrorRetrySeconds     int `toml:"error_retry_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Found          bool   `toml:"found"`
	Shelved        bool   `toml:"shelved"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Bindery.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Spotweb: indexing service search endpoint
//   - Sabnzbd: download manager submission endpoint
//   - Calibreweb: catalog login, search, and shelving
//   - Workflow: sweep intervals and pacing
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Spotweb       Spotweb       `toml:"spotweb"`
	Sabnzbd       Sabnzbd       `toml:"sabnzbd"`
	Calibreweb    Calibreweb    `toml:"calibreweb"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bindery/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bindery.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CalibrewebConfigured reports whether catalog integration is usable.
func (c *Config) CalibrewebConfigured() bool {
	return strings.TrimSpace(c.Calibreweb.URL) != "" &&
		strings.TrimSpace(c.Calibreweb.Username) != "" &&
		strings.TrimSpace(c.Calibreweb.Password) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
