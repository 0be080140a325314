package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"monev/internal/storage"
)

// migrationDSN returns the DSN the migrate helpers expect for the configured driver.
func (a *app) migrationDSN() string {
	if a.cfg.DatabaseDriver == "sqlite" {
		return storage.SQLiteDSN(a.cfg.DSN())
	}
	return a.cfg.DSN()
}

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.RunMigrations(a.cfg.DatabaseDriver, a.migrationDSN()); err != nil {
				return err
			}
			a.logger.Info("Migrations applied", "driver", a.cfg.DatabaseDriver)
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:     "down",
		Short:   "Roll back applied migrations",
		Args:    cobra.NoArgs,
		Example: "  monevctl migrate down --steps 1",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", steps)
			}
			if err := storage.RollbackMigrations(a.cfg.DatabaseDriver, a.migrationDSN(), steps); err != nil {
				return err
			}
			a.logger.Info("Migrations rolled back", "driver", a.cfg.DatabaseDriver, "steps", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, err := storage.MigrationVersion(a.cfg.DatabaseDriver, a.migrationDSN())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dirty {
				fmt.Fprintf(out, "%d (dirty)\n", v)
				return nil
			}
			fmt.Fprintln(out, v)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}
