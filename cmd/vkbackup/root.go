package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"vkbackup/pkg/config"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/ui"
)

var (
	// Version information, set with -ldflags
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	logFile       string
	notifications bool
	verbose       bool
)

// rootCmd runs a sync when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "vkbackup",
	Short: "Back up VK album photos to Yandex.Disk or other storage",
	Long: `vkbackup copies photos from a VK profile album to cloud storage.

It asks for a VK user id, album and photo count, records every photo in a
local ledger (photo_info.json) and uploads the largest size of each photo to
the destination folder. Files that already exist remotely are skipped.

Tokens are read from tokens.txt (access_token=...). The Yandex.Disk token is
asked for interactively and can be stored with 'vkbackup auth set'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runSync,
}

// Execute runs the root command and exits 1 on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .vkbackup.yaml or $XDG_CONFIG_HOME/vkbackup/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print every photo and info logs")

	addSyncFlags(rootCmd)

	rootCmd.SetVersionTemplate(`vkbackup {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	logger.Version = version
}

// loadConfig loads the configuration with the global flags applied. Unless
// asked otherwise only warnings and errors are logged so prompts stay readable.
func loadConfig(cmd *cobra.Command, extra map[string]interface{}) (*config.Config, error) {
	flags := make(map[string]interface{})
	for k, v := range extra {
		flags[k] = v
	}

	switch {
	case logLevel != "":
		flags["log-level"] = logLevel
	case verbose:
		flags["log-level"] = "info"
	default:
		flags["log-level"] = "warn"
	}
	if logFile != "" {
		flags["log-file"] = logFile
	}
	if cmd.Flags().Changed("notifications") {
		flags["notifications"] = notifications
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
