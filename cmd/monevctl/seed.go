package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"monev/internal/core"
)

type seedBudget struct {
	budget       core.Budget
	scores       map[string]string // aksi label -> hasil pengawasan
	availability []core.ResourceAvailability
}

var demoBudgets = []seedBudget{
	{
		budget: core.Budget{Provinsi: "Jawa Barat", Kabupaten: "Kabupaten Garut", OPD: "Dinas Kesehatan", Anggaran: 1_500_000_000, Realisasi: 1_125_000_000},
		scores: map[string]string{
			core.ActionLabels[0]: "85",
			core.ActionLabels[1]: "78,5",
			core.ActionLabels[2]: "90",
		},
		availability: []core.ResourceAvailability{
			{Jenis: "Bidan", Kebutuhan: 120, Tersedia: 96},
			{Jenis: "USG", Kebutuhan: 30, Tersedia: 12},
		},
	},
	{
		budget: core.Budget{Provinsi: "Nusa Tenggara Timur", Kabupaten: "Kabupaten Kupang", OPD: "Bappeda", Anggaran: 980_000_000, Realisasi: 410_000_000},
		scores: map[string]string{
			core.ActionLabels[0]: "70",
			core.ActionLabels[3]: "65",
			core.ActionLabels[7]: "72.5",
		},
		availability: []core.ResourceAvailability{
			{Jenis: "Antropometri", Kebutuhan: 200, Tersedia: 150},
		},
	},
	{
		budget: core.Budget{Provinsi: "Sulawesi Barat", Kabupaten: "Kabupaten Majene", OPD: "DP3AP2KB", Anggaran: 640_000_000, Realisasi: 600_000_000},
		scores: map[string]string{
			core.ActionLabels[4]: "88",
			core.ActionLabels[5]: "81",
		},
	},
}

var demoControls = []core.ControlElement{
	{Unsur: core.ControlUnsur[0], HasilPengawasan: "Memadai"},
	{Unsur: core.ControlUnsur[1], HasilPengawasan: "Perlu perbaikan pada pemetaan risiko"},
	{Unsur: core.ControlUnsur[4], HasilPengawasan: "Pemantauan berkala berjalan"},
}

// seedCounts reports how many records of each resource a seed run created.
type seedCounts struct {
	Budgets, Actions, Availability, Controls int
}

// seeder is the slice of the monitoring service that seeding writes through.
type seeder interface {
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	CreateAction(ctx context.Context, a core.ConvergenceAction) (core.ConvergenceAction, error)
	CreateAvailability(ctx context.Context, r core.ResourceAvailability) (core.ResourceAvailability, error)
	CreateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error)
}

// seed writes the demonstration dataset. Actions are created in canonical
// label order so repeated runs produce the same chart.
func seed(ctx context.Context, svc seeder) (seedCounts, error) {
	var n seedCounts
	for _, sb := range demoBudgets {
		b, err := svc.CreateBudget(ctx, sb.budget)
		if err != nil {
			return n, fmt.Errorf("seed budget %s: %w", sb.budget.Region(), err)
		}
		n.Budgets++

		for _, label := range core.ActionLabels {
			score, ok := sb.scores[label]
			if !ok {
				continue
			}
			if _, err := svc.CreateAction(ctx, core.ConvergenceAction{BudgetID: b.ID, Aksi: label, HasilPengawasan: score}); err != nil {
				return n, fmt.Errorf("seed action %q: %w", label, err)
			}
			n.Actions++
		}

		for _, r := range sb.availability {
			r.BudgetID = b.ID
			if _, err := svc.CreateAvailability(ctx, r); err != nil {
				return n, fmt.Errorf("seed availability %s: %w", r.Jenis, err)
			}
			n.Availability++
		}
	}

	for _, c := range demoControls {
		if _, err := svc.CreateControl(ctx, c); err != nil {
			return n, fmt.Errorf("seed control %s: %w", c.Unsur, err)
		}
		n.Controls++
	}
	return n, nil
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small demonstration dataset",
		Long: `Load three regional budgets with convergence actions, resource
availability and SPI control results. Running it twice adds the data twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			result, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer result.Cleanup()

			n, err := seed(ctx, result.Service)
			if err != nil {
				return err
			}
			a.logger.Info("Demo data loaded",
				"budgets", n.Budgets,
				"actions", n.Actions,
				"availability", n.Availability,
				"controls", n.Controls)
			return nil
		},
	}
}
