package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalforge/datamart/internal/model"
	"github.com/signalforge/datamart/internal/table"
	"github.com/signalforge/datamart/internal/vertical"
)

// MetaSuffix is appended to a product filename to name its sidecar record.
const MetaSuffix = ".meta.json"

// Partition is one date-bounded slice of a master table, ready to be
// materialized as a product file. Partitions are views, not logs: they are
// fully rederived from the master table on every run and never patched.
type Partition struct {
	Tier     model.Tier
	Period   string
	Filename string
	Table    *table.Table
}

// Partitioner derives and materializes the tier hierarchy for a vertical.
type Partitioner struct {
	dataDir string
}

// NewPartitioner creates the tier subdirectories under dataDir.
func NewPartitioner(dataDir string) (*Partitioner, error) {
	for _, t := range model.Tiers {
		dir := filepath.Join(dataDir, t.DirName())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "partition: create tier dir %s", dir)
		}
	}
	return &Partitioner{dataDir: dataDir}, nil
}

// Split derives the full partition set for one master table: one bundle,
// one partition per calendar year, per (year, quarter), and per
// (year, month). Only periods with at least one row are returned. The
// result is deterministic for a fixed table: partitions are ordered by
// (tier rank, period) and row membership follows master row order.
func (p *Partitioner) Split(v vertical.Vertical, t *table.Table) ([]Partition, error) {
	dateIdx, err := t.DateIndex()
	if err != nil {
		return nil, eris.Wrapf(err, "partition: %s", v.Slug())
	}

	base := v.BaseFilename()
	byKey := make(map[string]*Partition)
	var order []string

	add := func(tier model.Tier, period, filename string, r table.Row) {
		key := string(tier) + "|" + period
		part, ok := byKey[key]
		if !ok {
			part = &Partition{Tier: tier, Period: period, Filename: filename, Table: table.New(t.Columns)}
			byKey[key] = part
			order = append(order, key)
		}
		part.Table.Rows = append(part.Table.Rows, r)
	}

	for _, r := range t.Rows {
		d, err := t.RowDate(r, dateIdx)
		if err != nil {
			return nil, eris.Wrapf(err, "partition: %s", v.Slug())
		}
		year := d.Year()
		quarter := (int(d.Month())-1)/3 + 1
		month := int(d.Month())

		add(model.TierBundle, "All Time", base+"_FULL.csv", r)
		add(model.TierYearly, fmt.Sprintf("%d", year), fmt.Sprintf("%s_%d.csv", base, year), r)
		add(model.TierQuarterly, fmt.Sprintf("%d Q%d", year, quarter), fmt.Sprintf("%s_%d_Q%d.csv", base, year, quarter), r)
		add(model.TierMonthly, fmt.Sprintf("%d-%02d", year, month), fmt.Sprintf("%s_%d_%02d.csv", base, year, month), r)
	}

	parts := make([]Partition, 0, len(order))
	for _, key := range order {
		parts = append(parts, *byKey[key])
	}
	sort.SliceStable(parts, func(i, j int) bool {
		if parts[i].Tier.Rank() != parts[j].Tier.Rank() {
			return parts[i].Tier.Rank() < parts[j].Tier.Rank()
		}
		return parts[i].Period < parts[j].Period
	})
	return parts, nil
}

// Write materializes each partition under its tier directory, replacing
// any prior file at the same path, and writes a sidecar metadata record
// next to it. A failed partition is logged and skipped; the remaining
// partitions still write (a partial partition set is valid, the catalog
// just temporarily lacks those periods). The returned error aggregates
// per-partition failures and is advisory.
func (p *Partitioner) Write(v vertical.Vertical, parts []Partition) ([]string, error) {
	log := zap.L().With(zap.String("vertical", v.Slug()))

	var written []string
	var failed []string
	for _, part := range parts {
		path := filepath.Join(p.dataDir, part.Tier.DirName(), part.Filename)
		if err := part.Table.WriteCSVFile(path); err != nil {
			log.Error("partition write failed",
				zap.String("file", part.Filename),
				zap.Error(err),
			)
			failed = append(failed, part.Filename)
			continue
		}

		meta := model.PartitionMeta{Tier: part.Tier, Period: part.Period, Rows: part.Table.Len()}
		if err := writeJSONAtomic(path+MetaSuffix, meta); err != nil {
			// Sidecar loss only degrades the catalog's row counts.
			log.Warn("sidecar write failed",
				zap.String("file", part.Filename),
				zap.Error(err),
			)
		}
		written = append(written, part.Filename)
	}

	if len(failed) > 0 {
		return written, eris.Errorf("partition: %s: %d of %d writes failed (%s)",
			v.Slug(), len(failed), len(parts), strings.Join(failed, ", "))
	}
	return written, nil
}

// Prune deletes this vertical's product files for periods the current run
// did not produce, so partitions for amended history cannot go stale.
// Files belonging to other verticals are never touched.
func (p *Partitioner) Prune(v vertical.Vertical, written []string) error {
	keep := make(map[string]bool, len(written))
	for _, f := range written {
		keep[f] = true
	}
	prefix := v.BaseFilename() + "_"

	for _, tier := range model.Tiers {
		dir := filepath.Join(p.dataDir, tier.DirName())
		entries, err := os.ReadDir(dir)
		if err != nil {
			return eris.Wrapf(err, "partition: read tier dir %s", dir)
		}
		for _, e := range entries {
			name := e.Name()
			dataName := strings.TrimSuffix(name, MetaSuffix)
			if !strings.HasPrefix(dataName, prefix) || keep[dataName] {
				continue
			}
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return eris.Wrapf(err, "partition: prune %s", name)
			}
			if name == dataName { // log data files, not sidecars
				zap.L().Info("pruned stale partition",
					zap.String("vertical", v.Slug()),
					zap.String("file", name),
				)
			}
		}
	}
	return nil
}
