package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/soundvault/internal/scanner"
	"github.com/arung-agamani/soundvault/internal/search"
)

var scanPath string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Walk a directory tree and ingest recognized media into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd.Context(), scanPath)
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanPath, "path", "", "directory to scan")
	_ = scanCmd.MarkFlagRequired("path")
}

func runScan(ctx context.Context, path string) error {
	cfg := loadConfig()
	store, b, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	// Drain the bus before the store closes so every scan event reaches
	// the search index.
	defer b.Close(ctx)
	search.Register(ctx, b, store)

	res, err := scanner.Scan(ctx, path, store, scanner.Config{
		AudioFormats: cfg.AudioFormats,
		VideoFormats: cfg.VideoFormats,
		PhotoFormats: cfg.PhotoFormats,
		ArtworkDir:   cfg.ArtworkDir(),
	})
	if err != nil {
		return err
	}
	slog.Info("scan complete", "scanned", res.Scanned, "errors", len(res.Errors))
	return nil
}
