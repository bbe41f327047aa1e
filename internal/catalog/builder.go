// Package catalog assembles the UI-ready product listing from materialized
// partition files. The catalog reflects on-disk state only, never
// in-memory results from the same run, so catalog-only requests stay
// consistent across process restarts.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalforge/datamart/internal/model"
	"github.com/signalforge/datamart/internal/pipeline"
	"github.com/signalforge/datamart/internal/pricing"
	"github.com/signalforge/datamart/internal/vertical"
)

// estBytesPerRow is the conservative row-count estimate used for files
// missing a sidecar. It deliberately overestimates row width so prices
// round down, never up.
const estBytesPerRow = 200

// Builder scans the tier directories and produces ordered catalog entries.
type Builder struct {
	dataDir   string
	pricing   *pricing.Model
	verticals *vertical.Registry
}

// NewBuilder returns a builder over the given data directory.
func NewBuilder(dataDir string, pm *pricing.Model, reg *vertical.Registry) *Builder {
	return &Builder{dataDir: dataDir, pricing: pm, verticals: reg}
}

// Build scans each tier directory for materialized product files and
// returns the flat catalog, stably sorted by (tier rank, period). A tier
// directory that does not exist yet contributes nothing; an empty catalog
// is a valid result, not an error.
func (b *Builder) Build() ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry

	for _, tier := range model.Tiers {
		dir := filepath.Join(b.dataDir, tier.DirName())
		dirEntries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: read tier dir %s", dir)
		}

		for _, de := range dirEntries {
			name := de.Name()
			if de.IsDir() || !strings.HasSuffix(name, ".csv") {
				continue
			}
			info, err := de.Info()
			if err != nil {
				zap.L().Warn("catalog: stat failed", zap.String("file", name), zap.Error(err))
				continue
			}

			entry := model.CatalogEntry{
				Filename:    name,
				Tier:        tier,
				SizeBytes:   info.Size(),
				DownloadURL: "/download/" + name,
			}

			if meta, err := readMeta(filepath.Join(dir, name+pipeline.MetaSuffix)); err == nil {
				entry.Period = meta.Period
				entry.Rows = meta.Rows
			} else {
				entry.Period = derivePeriod(tier, name)
				entry.Rows = int(info.Size() / estBytesPerRow)
				entry.RowsEstimated = true
			}

			entry.Price = b.pricing.Price(tier, entry.Rows)
			entry.Description = describe(tier, entry.Period)
			if v := b.verticals.ByPrefix(name); v != nil {
				entry.Vertical = v.Slug()
			}

			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Tier.Rank() != entries[j].Tier.Rank() {
			return entries[i].Tier.Rank() < entries[j].Tier.Rank()
		}
		return entries[i].Period < entries[j].Period
	})
	return entries, nil
}

// Grouped buckets catalog entries by vertical display name. Entries whose
// filename matches no registered vertical are omitted here but remain in
// the flat catalog. Every registered vertical appears, so a vertical with
// no materialized files yet renders as an empty product list.
func (b *Builder) Grouped(entries []model.CatalogEntry) map[string][]model.CatalogEntry {
	grouped := make(map[string][]model.CatalogEntry)
	names := make(map[string]string) // slug -> display name
	for _, v := range b.verticals.All() {
		grouped[v.Name()] = []model.CatalogEntry{}
		names[v.Slug()] = v.Name()
	}
	for _, e := range entries {
		if e.Vertical == "" {
			continue
		}
		name := names[e.Vertical]
		grouped[name] = append(grouped[name], e)
	}
	return grouped
}

func readMeta(path string) (*model.PartitionMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read sidecar")
	}
	var meta model.PartitionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal sidecar")
	}
	return &meta, nil
}

// derivePeriod reconstructs the human period label from a product filename
// when no sidecar exists. The filename suffix encodes the period by
// construction: _FULL, _{year}, _{year}_Q{q}, or _{year}_{month}.
func derivePeriod(tier model.Tier, filename string) string {
	stem := strings.TrimSuffix(filename, ".csv")
	parts := strings.Split(stem, "_")

	switch tier {
	case model.TierBundle:
		return "All Time"
	case model.TierYearly:
		return parts[len(parts)-1]
	case model.TierQuarterly:
		if len(parts) >= 2 {
			return parts[len(parts)-2] + " " + parts[len(parts)-1]
		}
	case model.TierMonthly:
		if len(parts) >= 2 {
			return parts[len(parts)-2] + "-" + parts[len(parts)-1]
		}
	}
	return stem
}

func describe(tier model.Tier, period string) string {
	switch tier {
	case model.TierBundle:
		return "Complete Historical Bundle"
	case model.TierYearly:
		return fmt.Sprintf("%s Full Year Dataset", period)
	default:
		return fmt.Sprintf("%s Dataset", period)
	}
}

// HumanSize renders a byte count the way the catalog UI expects.
func HumanSize(bytes int64) string {
	const mb = 1024 * 1024
	if bytes > mb {
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	}
	return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
}
