package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/soundvault/internal/cliio"
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Run the interactive player command line only, no HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCLI(cmd.Context())
	},
}

func runCLI(ctx context.Context) error {
	cfg := loadConfig()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	stop := a.start(ctx)
	defer stop()

	cliio.Run(ctx, os.Stdin, os.Stdout, a.player)
	return nil
}
