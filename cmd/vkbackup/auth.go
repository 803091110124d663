package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vkbackup/pkg/config"
	"vkbackup/pkg/credentials"
	"vkbackup/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Yandex.Disk token",
	Long: `Store the destination token so the sync prompt can be answered with Enter.

Tokens are stored in:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (VKBACKUP_<NAME>_TOKEN)

The VK access token is always read from tokens.txt.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Store a token securely",
	Example: `  # Store the Yandex.Disk token
  vkbackup auth set

  # Same, with the name spelled out
  vkbackup auth set yandex`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthSet,
}

var authShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a stored token, masked",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthShow,
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Remove a stored token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthDelete,
}

var authGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to obtain the VK and Yandex.Disk tokens",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		credentials.ShowTokenGuide(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authDeleteCmd)
	authCmd.AddCommand(authGuideCmd)
}

func credentialName(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.ToLower(strings.TrimSpace(args[0]))
	}
	return config.BackendYandex
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := credentials.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	name := credentialName(args)

	p := newPrompter()
	token, err := p.askSecret(fmt.Sprintf("Token for %s (hidden)", name), "")
	if err != nil {
		return err
	}
	if err := manager.Store(name, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Token for %s saved", name))
	return nil
}

func runAuthShow(cmd *cobra.Command, args []string) error {
	manager, err := credentials.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	name := credentialName(args)

	cred, err := manager.Retrieve(name)
	if err != nil {
		return err
	}
	safe := credentials.Sanitize(cred)
	ui.PrintInfo("Name", safe.Name)
	ui.PrintInfo("Token", safe.Token)
	if !safe.LastModified.IsZero() {
		ui.PrintInfo("Saved", safe.LastModified.Format("2006-01-02 15:04"))
	}
	return nil
}

func runAuthDelete(cmd *cobra.Command, args []string) error {
	manager, err := credentials.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	name := credentialName(args)

	if err := manager.Delete(name); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Token for %s removed", name))
	return nil
}
