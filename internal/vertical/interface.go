// Package vertical defines the tracked business verticals and their
// synthetic row generators. Each vertical owns a fixed column schema and
// produces one observation per tracked company per calendar date.
package vertical

import (
	"math/rand/v2"
	"time"

	"github.com/signalforge/datamart/internal/table"
)

// Vertical defines the interface each data vertical must implement.
type Vertical interface {
	// Slug returns the unique identifier for this vertical (e.g., "fintech").
	// Slugs are restricted to [a-z0-9_] because they prefix product filenames.
	Slug() string

	// Name returns the human-readable vertical name shown in the catalog.
	Name() string

	// BaseFilename returns the filename stem for this vertical's master
	// store and partitioned products (e.g., "fintech_growth_digest").
	BaseFilename() string

	// Columns returns the fixed schema, always starting with the company
	// and date columns.
	Columns() []string

	// Generate produces one row per tracked company for the given date.
	// Values are synthetic but the shape is deterministic: every row has
	// len(Columns()) cells with company and date populated.
	Generate(rng *rand.Rand, date time.Time) []table.Row
}
