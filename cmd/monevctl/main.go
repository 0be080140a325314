// Command monevctl is the administrative CLI: schema migrations, demo data,
// one-shot exports, a text summary and the Google OAuth bootstrap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"monev/internal/backend"
	"monev/internal/cli"
	"monev/internal/config"
	applog "monev/internal/log"
)

// app carries what PersistentPreRunE prepares for every subcommand.
type app struct {
	logger *applog.Logger
	cfg    *config.Config
}

func (a *app) backendConfig() (backend.Config, error) {
	bc, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return backend.Config{}, err
	}
	// Admin commands never publish change events and always read through.
	bc.AMQPURL = ""
	bc.CacheTTL = 0
	return bc, bc.Validate()
}

// openBackend builds the service for commands that read or write records.
// The caller must run the returned result's Cleanup.
func (a *app) openBackend(ctx context.Context) (*backend.BackendResult, error) {
	bc, err := a.backendConfig()
	if err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	return backend.NewFactory(a.logger.Logger).CreateBackend(ctx, bc)
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "monevctl",
		Short: "Administer the monev monitoring dashboard",
		Long: `monevctl manages the monev database and its exports.

It reads the same environment (and .env file) as the monev server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			a.logger = cli.SetupLogger("monevctl")
			a.cfg = config.Load()
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return nil
		},
	}

	root.AddCommand(
		newMigrateCommand(a),
		newSeedCommand(a),
		newExportCommand(a),
		newSummaryCommand(a),
		newOAuthInitCommand(a),
	)
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
