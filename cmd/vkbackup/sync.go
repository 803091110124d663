package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vkbackup/pkg/config"
	"vkbackup/pkg/credentials"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/syncer"
	"vkbackup/pkg/ui"
	"vkbackup/pkg/ui/tui"
)

var (
	backend           string
	ledgerPath        string
	tokensPath        string
	concurrentUploads int
	useTUI            bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Back up album photos (the default command)",
	Long: `Ask for a VK user id, album and photo count, update the ledger and upload
the photos to the configured destination.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	addSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "destination backend (yandex, s3, minio, local)")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "ledger file (default photo_info.json)")
	cmd.Flags().StringVar(&tokensPath, "tokens", "", "token file (default tokens.txt)")
	cmd.Flags().IntVar(&concurrentUploads, "concurrent-uploads", 0, "number of photos uploaded at once")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show the interactive upload dashboard")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]interface{}{
		"backend":            backend,
		"ledger":             ledgerPath,
		"tokens":             tokensPath,
		"concurrent-uploads": concurrentUploads,
	})
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	tokens, err := credentials.LoadTokenFile(cfg.Credentials.File)
	if err != nil {
		return err
	}
	sourceToken, ok := tokens.SourceToken()
	if !ok {
		return fmt.Errorf("%s has no %s entry", cfg.Credentials.File, credentials.KeySourceToken)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPrompter()
	rc := syncer.RunConfig{SourceToken: sourceToken}
	if rc.UserID, err = p.askRequired("VK user id"); err != nil {
		return err
	}
	if rc.AlbumID, err = p.ask("Album", cfg.VK.DefaultAlbum); err != nil {
		return err
	}
	if rc.Count, err = p.askCount(cfg.VK.DefaultCount); err != nil {
		return err
	}

	var opts []syncer.Option
	if cfg.Notifications.Enabled {
		opts = append(opts, syncer.WithNotifier(ui.NewNotifier(true)))
	}
	s := syncer.New(cfg, opts...)

	batch, err := s.Collect(ctx, rc)
	if err != nil {
		return err
	}
	ui.PrintInfo("Fetched", fmt.Sprintf("%d photos (%d new in %s)", len(batch.Fetched), len(batch.Added), cfg.Ledger.Path))

	if cfg.Destination.Backend == config.BackendYandex {
		if rc.DestToken, err = p.askSecret("Yandex.Disk token", storedDestToken(tokens, log)); err != nil {
			return err
		}
	}

	// Cancelling the run from the dashboard stops the pool like Ctrl+C does
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if useTUI {
		dash := tui.New(cfg.Destination.Folder, cfg.Destination.Backend, cancel)
		dash.Start()
		s.SetReporter(dash)
	} else {
		label := fmt.Sprintf("Uploading to %s:%s", cfg.Destination.Backend, cfg.Destination.Folder)
		s.SetReporter(ui.NewProgressDisplay(os.Stdout, label, len(batch.Fetched), verbose))
	}

	summary, err := s.Upload(runCtx, rc, batch)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		return err
	}
	ui.PrintSuccess("Backup complete")
	return nil
}

// storedDestToken looks for a saved Yandex token: the credential store
// first, then the token file
func storedDestToken(tokens credentials.Tokens, log logger.Logger) string {
	if m, err := credentials.NewManager(); err == nil {
		if token := m.Token(config.BackendYandex); token != "" {
			return token
		}
	} else {
		log.WithError(err).Debug("credential store unavailable")
	}
	token, _ := tokens.Get(credentials.KeyDestToken)
	return token
}

func printSummary(s *syncer.Summary) {
	ui.PrintInfo("Ledger", fmt.Sprintf("%d records", s.LedgerTotal))
	ui.PrintInfo("Uploaded", fmt.Sprintf("%d (%s)", s.Uploaded, ui.FormatBytes(s.Bytes)))
	ui.PrintInfo("Skipped", fmt.Sprintf("%d", s.Skipped))
	if s.Failed > 0 {
		ui.PrintWarning("Failed", s.Failed)
	}
	ui.PrintInfo("Duration", ui.FormatDuration(s.Duration))
}
