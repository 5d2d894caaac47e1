package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the HTTP/WebSocket gateway only",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWeb(cmd.Context())
	},
}

func runWeb(ctx context.Context) error {
	cfg := loadConfig()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	stop := a.start(ctx)
	defer stop()

	slog.Info("soundvault web starting", "addr", cfg.HTTPHost+":"+cfg.HTTPPort)
	return a.gateway.Run(ctx)
}
