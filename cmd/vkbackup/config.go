package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vkbackup/pkg/config"
	"vkbackup/pkg/credentials"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/ui"
)

const defaultConfigName = ".vkbackup.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Create, show and validate the vkbackup configuration file.

Settings are taken from (highest priority first):
  1. Command line flags
  2. Environment variables (VKBACKUP_*)
  3. .env files
  4. The configuration file
  5. Defaults`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the files it points to",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = defaultConfigName
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file %s already exists", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration written to " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Put your VK token in tokens.txt as access_token=...")
	fmt.Println("2. Run 'vkbackup auth set' to save your Yandex.Disk token")
	fmt.Println("3. Run 'vkbackup' to start a backup")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	display := *cfg
	if display.Destination.Minio.SecretKey != "" {
		display.Destination.Minio.SecretKey = logger.MaskToken(display.Destination.Minio.SecretKey)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found, using defaults)"
	}
	fmt.Println()
	ui.PrintInfo("Configuration file", source)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return fmt.Errorf("no configuration file found, specify one with --config")
	}
	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		return err
	}

	var warnings []string
	if _, err := credentials.LoadTokenFile(cfg.Credentials.File); err != nil {
		warnings = append(warnings, err.Error())
	}
	if dir := filepath.Dir(cfg.Ledger.Path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("ledger directory %s does not exist", dir))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	for _, w := range warnings {
		ui.PrintWarning("Warning", w)
	}
	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Backend", cfg.Destination.Backend)
	ui.PrintInfo("Folder", cfg.Destination.Folder)
	ui.PrintInfo("Ledger", cfg.Ledger.Path)
	return nil
}
