package sheets

import (
	"context"

	"monev/internal/core"
)

// Ports for outbound adapters.
type (
	// SnapshotExporter mirrors a dashboard snapshot to an external spreadsheet.
	SnapshotExporter interface {
		// Export replaces every exported tab with the contents of snap.
		Export(ctx context.Context, snap core.Snapshot) error
	}
)
