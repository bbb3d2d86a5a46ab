package config

// Default returns the built-in configuration values. Endpoint addresses and
// credentials are intentionally empty and must come from the config file.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/bindery",
			LogDir:  "~/.local/share/bindery/logs",
		},
		Spotweb: Spotweb{
			Category:       "7020",
			TimeoutSeconds: 30,
		},
		Sabnzbd: Sabnzbd{
			Category:       "books",
			TimeoutSeconds: 10,
		},
		Calibreweb: Calibreweb{
			TimeoutSeconds:       15,
			SearchTimeoutSeconds: 30,
			ShelfCacheTTLSeconds: 300,
		},
		Workflow: Workflow{
			SearchIntervalSeconds: 900,
			ImportIntervalSeconds: 120,
			ItemPauseSeconds:      2,
			ErrorRetrySeconds:     60,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Found:          true,
			Shelved:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: "text",
			Level:  "info",
		},
	}
}
