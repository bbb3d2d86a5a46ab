package testsupport

import (
	"path/filepath"
	"testing"

	"bindery/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Spotweb.BaseURL = "http://spotweb.test"
	cfg.Spotweb.APIKey = "test-spot-key"
	cfg.Sabnzbd.BaseURL = "http://sabnzbd.test"
	cfg.Sabnzbd.APIKey = "test-sab-key"
	cfg.Workflow.ItemPauseSeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithCalibreweb enables catalog integration on the test config.
func WithCalibreweb(url, username, password string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Calibreweb.URL = url
		cfg.Calibreweb.Username = username
		cfg.Calibreweb.Password = password
	}
}
