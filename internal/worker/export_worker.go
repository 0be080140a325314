package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"monev/internal/amqp"
	"monev/internal/core"
	"monev/internal/sheets"
)

// SnapshotSource loads the full dashboard snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

// ExportWorker mirrors the store into a spreadsheet. Every change event
// triggers a full re-export; there is no per-row sync.
type ExportWorker struct {
	source   SnapshotSource
	exporter sheets.SnapshotExporter
	now      func() time.Time

	// mu serialises exports so two events never interleave tab writes.
	mu         sync.Mutex
	lastExport time.Time
	exports    int
}

func NewExportWorker(source SnapshotSource, exporter sheets.SnapshotExporter) *ExportWorker {
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		now:      time.Now,
	}
}

// HandleChange processes a single change event from AMQP. Events raised
// before the start of the last successful export are already reflected in
// the spreadsheet and are skipped.
func (w *ExportWorker) HandleChange(ctx context.Context, evt *amqp.ChangeEvent) error {
	slog.InfoContext(ctx, "Processing change event",
		"event_id", evt.EventID,
		"resource", evt.Resource,
		"action", evt.Action,
		"id", evt.ID)

	w.mu.Lock()
	covered := !w.lastExport.IsZero() && evt.Timestamp.Before(w.lastExport)
	w.mu.Unlock()
	if covered {
		slog.DebugContext(ctx, "Change already exported, skipping", "event_id", evt.EventID)
		return nil
	}

	if err := w.ExportNow(ctx); err != nil {
		return fmt.Errorf("export after %s %s: %w", evt.Resource, evt.Action, err)
	}
	return nil
}

// ExportNow loads a fresh snapshot and writes it to the exporter.
func (w *ExportWorker) ExportNow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := w.now()
	snap, err := w.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := w.exporter.Export(ctx, snap); err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}

	w.lastExport = started
	w.exports++

	slog.InfoContext(ctx, "Snapshot exported",
		"budgets", len(snap.Budgets),
		"actions", len(snap.Actions),
		"availability", len(snap.Availability),
		"controls", len(snap.Controls),
		"duration", w.now().Sub(started))
	return nil
}

// StartupExport runs one export when the worker starts, so that changes made
// while it was down reach the spreadsheet. Failures are logged, not fatal.
func (w *ExportWorker) StartupExport(ctx context.Context) {
	slog.InfoContext(ctx, "Performing startup export...")
	if err := w.ExportNow(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export failed", "error", err)
	}
}

// RunPeriodic re-exports on every tick until ctx is cancelled. It is the
// backstop for change events lost while the broker was unreachable.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ExportNow(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}

// Exports returns how many exports have succeeded.
func (w *ExportWorker) Exports() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exports
}
