package memory

import (
	"context"
	"sync"

	"monev/internal/core"
	ports "monev/internal/sheets"
)

var _ ports.SnapshotExporter = (*Exporter)(nil)

// Exporter keeps the last exported tabs in memory. It stands in for Google
// Sheets in development and tests.
type Exporter struct {
	mu      sync.Mutex
	tabs    map[string][][]any
	exports int
}

func New() *Exporter {
	return &Exporter{tabs: make(map[string][][]any)}
}

// Export replaces the stored tabs with the contents of snap.
func (e *Exporter) Export(ctx context.Context, snap core.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tabs := ports.Tabs(snap)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tabs = make(map[string][][]any, len(tabs))
	for _, t := range tabs {
		e.tabs[t.Title] = t.Rows
	}
	e.exports++
	return nil
}

// Tab returns a copy of the rows last written to title.
func (e *Exporter) Tab(title string) ([][]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, ok := e.tabs[title]
	if !ok {
		return nil, false
	}
	return append([][]any(nil), rows...), true
}

// Exports counts completed exports.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
