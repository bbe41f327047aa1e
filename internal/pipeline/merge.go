package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalforge/datamart/internal/store"
	"github.com/signalforge/datamart/internal/table"
	"github.com/signalforge/datamart/internal/vertical"
)

// Merger grows per-vertical master tables. A first run backfills the
// configured historical window; every later run regenerates exactly one
// day and replaces that day's rows, so re-running for the same date is
// idempotent.
type Merger struct {
	store        store.MasterStore
	backfillDays int
}

// NewMerger returns a merger writing through the given master store.
func NewMerger(st store.MasterStore, backfillDays int) *Merger {
	return &Merger{store: st, backfillDays: backfillDays}
}

// MergeResult describes what one merge did.
type MergeResult struct {
	Backfilled bool
	StoreRows  int
	Table      *table.Table
}

// MergeDay brings the vertical's master table up to date as of the given
// date. The updated table is persisted before returning; on any error the
// previously persisted table is left untouched.
func (m *Merger) MergeDay(ctx context.Context, v vertical.Vertical, rng *rand.Rand, asOf time.Time) (*MergeResult, error) {
	asOf = midnight(asOf)
	log := zap.L().With(zap.String("vertical", v.Slug()))

	if !m.store.Exists(v.BaseFilename()) {
		t, err := m.backfill(ctx, v, rng, asOf)
		if err != nil {
			return nil, err
		}
		if err := m.store.Save(ctx, v.BaseFilename(), t); err != nil {
			return nil, err
		}
		log.Info("backfilled master store",
			zap.Int("days", m.backfillDays+1),
			zap.Int("rows", t.Len()),
		)
		return &MergeResult{Backfilled: true, StoreRows: t.Len(), Table: t}, nil
	}

	t, err := m.store.Load(ctx, v.BaseFilename())
	if err != nil {
		return nil, err
	}

	dateIdx, err := t.DateIndex()
	if err != nil {
		return nil, eris.Wrapf(err, "merge: %s master has no date column", v.Slug())
	}

	// Overwrite-on-regenerate: drop any existing rows for asOf, then union
	// in the freshly generated day.
	asOfStr := asOf.Format(table.DateLayout)
	merged := t.Filter(func(r table.Row) bool {
		return dateIdx >= len(r) || r[dateIdx] != asOfStr
	})
	replaced := t.Len() - merged.Len()

	fresh, err := generate(v, rng, asOf)
	if err != nil {
		return nil, err
	}
	for _, r := range fresh {
		if err := merged.Append(r); err != nil {
			return nil, eris.Wrapf(err, "merge: %s generated row", v.Slug())
		}
	}

	deduped, err := dedupEventKeys(merged)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: %s dedup", v.Slug())
	}

	if err := m.store.Save(ctx, v.BaseFilename(), deduped); err != nil {
		return nil, err
	}

	log.Info("merged day into master store",
		zap.String("as_of", asOfStr),
		zap.Int("replaced_rows", replaced),
		zap.Int("rows", deduped.Len()),
	)
	return &MergeResult{StoreRows: deduped.Len(), Table: deduped}, nil
}

// backfill generates the full historical window, inclusive of asOf.
func (m *Merger) backfill(ctx context.Context, v vertical.Vertical, rng *rand.Rand, asOf time.Time) (*table.Table, error) {
	t := table.New(v.Columns())
	start := asOf.AddDate(0, 0, -m.backfillDays)
	for d := start; !d.After(asOf); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "merge: backfill cancelled")
		}
		rows, err := generate(v, rng, d)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if err := t.Append(r); err != nil {
				return nil, eris.Wrapf(err, "merge: %s generated row for %s", v.Slug(), d.Format(table.DateLayout))
			}
		}
	}
	return dedupEventKeys(t)
}

// generate shields the caller from a panicking generator. The panic is
// surfaced as an error, not swallowed: a generation failure must skip the
// merge entirely so the previously persisted store stays intact.
func generate(v vertical.Vertical, rng *rand.Rand, d time.Time) (rows []table.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = eris.Errorf("merge: %s generator panicked: %v", v.Slug(), r)
		}
	}()
	return v.Generate(rng, d), nil
}

// dedupEventKeys enforces the event-key invariant: when an explicit "id"
// column is present rows are keyed by id, otherwise by (entity, date). On
// collision the most recently appended row wins, in place, so earlier row
// order is preserved.
func dedupEventKeys(t *table.Table) (*table.Table, error) {
	keyOf, err := eventKeyFunc(t)
	if err != nil {
		return nil, err
	}

	out := table.New(t.Columns)
	seen := make(map[string]int, t.Len())
	for _, r := range t.Rows {
		k := keyOf(r)
		if i, ok := seen[k]; ok {
			out.Rows[i] = r
			continue
		}
		seen[k] = len(out.Rows)
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

// eventKeyFunc picks the dedup key for a table: explicit id column, else
// the (entity, date) tuple.
func eventKeyFunc(t *table.Table) (func(table.Row) string, error) {
	if idIdx := t.ColumnIndex("id"); idIdx >= 0 {
		return func(r table.Row) string {
			return cell(r, idIdx)
		}, nil
	}

	dateIdx, err := t.DateIndex()
	if err != nil {
		return nil, err
	}
	entityIdx := t.EntityIndex()
	if entityIdx < 0 {
		return nil, eris.New("table: no entity column for event key")
	}
	return func(r table.Row) string {
		return cell(r, entityIdx) + "\x00" + cell(r, dateIdx)
	}, nil
}

func cell(r table.Row, i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
