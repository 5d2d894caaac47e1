package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/soundvault/internal/search"
	"github.com/arung-agamani/soundvault/internal/seed"
)

var seedTotal int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic catalog of the given size",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context(), seedTotal)
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedTotal, "total", 10, "number of synthetic tracks to generate")
}

func runSeed(ctx context.Context, total int) error {
	cfg := loadConfig()
	store, b, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	// Drain the bus before the store closes so every seeded row is
	// reflected in the search index.
	defer b.Close(ctx)
	search.Register(ctx, b, store)

	ids, err := seed.Generate(ctx, store, total)
	if err != nil {
		return err
	}
	slog.Info("seed complete", "tracks_created", len(ids))
	return nil
}
