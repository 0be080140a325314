package sheets

import (
	"testing"

	"monev/internal/core"
	"monev/internal/dashboard"
)

func TestTabs(t *testing.T) {
	budget := core.Budget{ID: 1, Provinsi: "Bali", Kabupaten: "Badung", OPD: "Dinkes", Anggaran: 400, Realisasi: 100}
	snap := core.Snapshot{
		Budgets: []core.Budget{budget},
		Actions: []core.ConvergenceAction{
			{ID: 3, BudgetID: 1, Aksi: core.ActionLabels[0], HasilPengawasan: "7,5", Budget: &budget},
		},
		Availability: []core.ResourceAvailability{
			{ID: 4, BudgetID: 9, Jenis: "USG", Kebutuhan: 2, Tersedia: 1},
		},
		Controls: []core.ControlElement{{ID: 5, Unsur: core.ControlUnsur[2], HasilPengawasan: "Baik"}},
	}

	tabs := Tabs(snap)

	titles := []string{TabBudgets, TabActions, TabAvailability, TabControls, TabActionSummary}
	if len(tabs) != len(titles) {
		t.Fatalf("got %d tabs, want %d", len(tabs), len(titles))
	}
	for i, tab := range tabs {
		if tab.Title != titles[i] {
			t.Errorf("tab %d = %q, want %q", i, tab.Title, titles[i])
		}
		if len(tab.Rows) != 2 {
			t.Errorf("tab %q has %d rows, want header plus one", tab.Title, len(tab.Rows))
		}
	}

	if got := tabs[0].Rows[1][6]; got != 25.0 {
		t.Errorf("absorption = %v, want 25", got)
	}
	if got := tabs[1].Rows[1][5]; got != 7.5 {
		t.Errorf("action score = %v, want 7.5", got)
	}
	if got := tabs[2].Rows[1][2]; got != dashboard.NotFoundLabel {
		t.Errorf("unmatched availability provinsi = %v", got)
	}
	if got := tabs[2].Rows[1][7]; got != int64(-1) {
		t.Errorf("gap = %v, want -1", got)
	}

	summary := tabs[4]
	if len(summary.Rows[0]) != 1+len(core.ActionLabels) {
		t.Errorf("summary header has %d columns", len(summary.Rows[0]))
	}
	if summary.Rows[1][0] != "Bali - Badung" || summary.Rows[1][1] != 7.5 {
		t.Errorf("summary row = %v", summary.Rows[1])
	}
}
