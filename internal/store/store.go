// Package store persists per-vertical master tables and pipeline run
// history. Master tables are the single source of truth for a vertical's
// full history; everything under the tier directories is derived from them.
package store

import (
	"context"

	"github.com/signalforge/datamart/internal/table"
)

// MasterStore defines the persistence interface for per-vertical master
// tables. Implementations must make Save all-or-nothing: a failed save
// leaves the previously persisted table untouched.
type MasterStore interface {
	// Load reads the master table for a vertical slug.
	Load(ctx context.Context, baseFilename string) (*table.Table, error)

	// Save persists the master table for a vertical, atomically replacing
	// any previous version.
	Save(ctx context.Context, baseFilename string, t *table.Table) error

	// Exists reports whether a master table has ever been persisted.
	Exists(baseFilename string) bool
}
