package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"monev/internal/amqp"
	"monev/internal/core"
	"monev/internal/sheets"
	"monev/internal/sheets/memory"
)

type fakeSource struct {
	snap  core.Snapshot
	err   error
	calls int
}

func (f *fakeSource) Snapshot(ctx context.Context) (core.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

type failingExporter struct{}

func (failingExporter) Export(ctx context.Context, snap core.Snapshot) error {
	return errors.New("quota exceeded")
}

func testSnapshot() core.Snapshot {
	budget := core.Budget{ID: 1, Provinsi: "DKI Jakarta", Kabupaten: "Jakarta Barat", OPD: "Dinkes", Anggaran: 1500000, Realisasi: 750000}
	return core.Snapshot{
		Budgets: []core.Budget{budget},
		Actions: []core.ConvergenceAction{
			{ID: 1, BudgetID: 1, Aksi: core.ActionLabels[0], HasilPengawasan: "5", Budget: &budget},
		},
	}
}

func TestExportWorker_ExportNow(t *testing.T) {
	source := &fakeSource{snap: testSnapshot()}
	exporter := memory.New()
	w := NewExportWorker(source, exporter)

	if err := w.ExportNow(context.Background()); err != nil {
		t.Fatalf("ExportNow() error = %v", err)
	}

	rows, ok := exporter.Tab(sheets.TabBudgets)
	if !ok {
		t.Fatalf("tab %q not written", sheets.TabBudgets)
	}
	if len(rows) != 2 {
		t.Errorf("budget tab rows = %d, want header plus 1", len(rows))
	}
	if w.Exports() != 1 {
		t.Errorf("Exports() = %d, want 1", w.Exports())
	}
}

func TestExportWorker_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   *fakeSource
		exporter sheets.SnapshotExporter
	}{
		{"snapshot failure", &fakeSource{err: errors.New("database is locked")}, memory.New()},
		{"export failure", &fakeSource{snap: testSnapshot()}, failingExporter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewExportWorker(tt.source, tt.exporter)
			if err := w.ExportNow(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			if w.Exports() != 0 {
				t.Errorf("failed export must not be counted")
			}
		})
	}
}

func TestExportWorker_HandleChangeSkipsCoveredEvents(t *testing.T) {
	source := &fakeSource{snap: testSnapshot()}
	w := NewExportWorker(source, memory.New())

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return base }

	stale := amqp.NewChangeEvent(core.ResourceBudget, "created", 1)
	stale.Timestamp = base.Add(-time.Second)
	fresh := amqp.NewChangeEvent(core.ResourceBudget, "deleted", 1)
	fresh.Timestamp = base.Add(time.Second)

	ctx := context.Background()
	if err := w.HandleChange(ctx, stale); err != nil {
		t.Fatalf("first event: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("first event should export, calls = %d", source.calls)
	}

	stale2 := amqp.NewChangeEvent(core.ResourceControl, "updated", 2)
	stale2.Timestamp = base.Add(-time.Millisecond)
	if err := w.HandleChange(ctx, stale2); err != nil {
		t.Fatalf("stale event: %v", err)
	}
	if source.calls != 1 {
		t.Errorf("event older than last export should be skipped, calls = %d", source.calls)
	}

	if err := w.HandleChange(ctx, fresh); err != nil {
		t.Fatalf("fresh event: %v", err)
	}
	if source.calls != 2 {
		t.Errorf("newer event should export, calls = %d", source.calls)
	}
}

func TestExportWorker_RunPeriodicStopsOnCancel(t *testing.T) {
	source := &fakeSource{snap: testSnapshot()}
	w := NewExportWorker(source, memory.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.RunPeriodic(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for w.Exports() == 0 {
		select {
		case <-deadline:
			t.Fatal("no periodic export happened")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPeriodic did not return after cancel")
	}
}
