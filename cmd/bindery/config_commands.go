package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bindery/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the spotweb and sabnzbd endpoints before running Bindery.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, loadedPath, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", loadedPath)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "data_dir:            %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "log_dir:             %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "spotweb.base_url:    %s\n", cfg.Spotweb.BaseURL)
			fmt.Fprintf(out, "spotweb.category:    %s\n", cfg.Spotweb.Category)
			fmt.Fprintf(out, "sabnzbd.base_url:    %s\n", cfg.Sabnzbd.BaseURL)
			fmt.Fprintf(out, "sabnzbd.category:    %s\n", cfg.Sabnzbd.Category)
			fmt.Fprintf(out, "calibreweb:          %s\n", describeCalibreweb(cfg))
			fmt.Fprintf(out, "search interval:     %ds\n", cfg.Workflow.SearchIntervalSeconds)
			fmt.Fprintf(out, "import interval:     %ds\n", cfg.Workflow.ImportIntervalSeconds)
			fmt.Fprintf(out, "notifications:       %s\n", describeNotifications(cfg))
			fmt.Fprintf(out, "logging:             %s/%s\n", cfg.Logging.Format, cfg.Logging.Level)
			return nil
		},
	}
}

func describeCalibreweb(cfg *config.Config) string {
	if !cfg.CalibrewebConfigured() {
		return "not configured"
	}
	return fmt.Sprintf("%s (user %s)", cfg.Calibreweb.URL, cfg.Calibreweb.Username)
}

func describeNotifications(cfg *config.Config) string {
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return "not configured"
	}
	return fmt.Sprintf("ntfy (found=%s shelved=%s errors=%s)",
		yesNo(cfg.Notifications.Found),
		yesNo(cfg.Notifications.Shelved),
		yesNo(cfg.Notifications.Errors),
	)
}
