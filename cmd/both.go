package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/soundvault/internal/cliio"
)

var bothCmd = &cobra.Command{
	Use:   "both",
	Short: "Run the HTTP/WebSocket gateway and the interactive command line together",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoth(cmd.Context())
	},
}

func runBoth(ctx context.Context) error {
	cfg := loadConfig()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	stop := a.start(ctx)
	defer stop()

	go cliio.Run(ctx, os.Stdin, os.Stdout, a.player)

	slog.Info("soundvault both starting", "addr", cfg.HTTPHost+":"+cfg.HTTPPort)
	return a.gateway.Run(ctx)
}
