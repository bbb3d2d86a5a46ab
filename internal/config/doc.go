// Package config loads and validates Bindery's TOML configuration.
package config
