package sheets

import (
	"math"

	"monev/internal/core"
	"monev/internal/dashboard"
)

// Tab titles written by every exporter, in order.
const (
	TabBudgets       = "Anggaran"
	TabActions       = "Aksi Konvergensi"
	TabAvailability  = "Ketersediaan"
	TabControls      = "SPI"
	TabActionSummary = "Ringkasan Aksi"
)

// Tab is one sheet's worth of rows, header first.
type Tab struct {
	Title string
	Rows  [][]any
}

// Tabs flattens a snapshot into the exported sheets. Children are joined to
// their budgets the same way the dashboard tables are.
func Tabs(snap core.Snapshot) []Tab {
	return []Tab{
		budgetTab(snap.Budgets),
		actionTab(dashboard.JoinActions(snap.Actions, snap.Budgets)),
		availabilityTab(dashboard.JoinAvailability(snap.Availability, snap.Budgets)),
		controlTab(snap.Controls),
		summaryTab(dashboard.BuildActionChart(snap.Actions)),
	}
}

func budgetTab(budgets []core.Budget) Tab {
	rows := [][]any{{"ID", "Provinsi", "Kabupaten/Kota", "OPD", "Anggaran", "Realisasi", "Serapan (%)"}}
	for _, b := range budgets {
		rows = append(rows, []any{b.ID, b.Provinsi, b.Kabupaten, b.OPD, b.Anggaran, b.Realisasi, round1(b.Absorption())})
	}
	return Tab{Title: TabBudgets, Rows: rows}
}

func actionTab(actions []dashboard.JoinedAction) Tab {
	rows := [][]any{{"ID", "Budget ID", "Provinsi", "Kabupaten/Kota", "Aksi", "Hasil Pengawasan"}}
	for _, a := range actions {
		rows = append(rows, []any{a.ID, a.BudgetID, a.Provinsi(), a.Kabupaten(), a.Aksi, a.Score()})
	}
	return Tab{Title: TabActions, Rows: rows}
}

func availabilityTab(items []dashboard.JoinedAvailability) Tab {
	rows := [][]any{{"ID", "Budget ID", "Provinsi", "Kabupaten/Kota", "Jenis", "Kebutuhan", "Tersedia", "Selisih"}}
	for _, r := range items {
		rows = append(rows, []any{r.ID, r.BudgetID, r.Provinsi(), r.Kabupaten(), r.Jenis, r.Kebutuhan, r.Tersedia, r.Gap()})
	}
	return Tab{Title: TabAvailability, Rows: rows}
}

func controlTab(controls []core.ControlElement) Tab {
	rows := [][]any{{"ID", "Unsur SPI", "Hasil Pengawasan"}}
	for _, c := range controls {
		rows = append(rows, []any{c.ID, c.Unsur, c.HasilPengawasan})
	}
	return Tab{Title: TabControls, Rows: rows}
}

// summaryTab transposes the action chart: one row per region, one column per action.
func summaryTab(chart dashboard.ChartData) Tab {
	header := []any{"Wilayah"}
	for _, ds := range chart.Datasets {
		header = append(header, ds.Label)
	}
	rows := [][]any{header}
	for i, region := range chart.Labels {
		row := []any{region}
		for _, ds := range chart.Datasets {
			row = append(row, ds.Data[i])
		}
		rows = append(rows, row)
	}
	return Tab{Title: TabActionSummary, Rows: rows}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
