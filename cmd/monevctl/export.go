package main

import (
	"github.com/spf13/cobra"

	"monev/internal/backend"
	"monev/internal/worker"
)

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the current snapshot to the configured spreadsheet once",
		Long: `Export every collection to Google Sheets, or to an in-memory sink
when GOOGLE_SPREADSHEET_ID is unset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bc, err := a.backendConfig()
			if err != nil {
				return err
			}
			factory := backend.NewFactory(a.logger.Logger)

			result, err := factory.CreateBackend(ctx, bc)
			if err != nil {
				return err
			}
			defer result.Cleanup()

			exporter, err := factory.CreateExporter(ctx, bc)
			if err != nil {
				return err
			}
			return worker.NewExportWorker(result.Service, exporter).ExportNow(ctx)
		},
	}
}
