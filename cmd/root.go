package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/soundvault/config"
)

var rootCmd = &cobra.Command{
	Use:   "soundvault",
	Short: "Self-hosted music library and playback server",
	// No subcommand given behaves exactly like `web`.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWeb(cmd.Context())
	},
}

// Execute runs the cobra command tree; main only calls this.
func Execute() {
	ctx, cancel := signalContext()
	defer cancel()

	rootCmd.AddCommand(cliCmd, webCmd, bothCmd, seedCmd, scanCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so every
// subcommand shuts down cleanly on Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutdown signal received")
		cancel()
	}()
	return ctx, cancel
}

func loadConfig() *config.Config {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return cfg
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
