// Package pricing prices partitioned products from a tiered model: a base
// price per tier plus a volume increment per 10k rows, bounded by a cap.
package pricing

import (
	"github.com/signalforge/datamart/internal/config"
	"github.com/signalforge/datamart/internal/model"
)

// rowsPerBand is the row-count band size that earns one price increment.
const rowsPerBand = 10000

// Model maps (tier, row count) to a price in whole USD.
type Model struct {
	tiers map[string]config.TierPricing
}

// New builds a pricing model from configuration. Missing tiers pick up the
// published defaults so a sparse config file cannot zero out prices.
func New(cfg config.PricingConfig) *Model {
	tiers := make(map[string]config.TierPricing, len(DefaultTiers))
	for name, tp := range DefaultTiers {
		tiers[name] = tp
	}
	for name, tp := range cfg.Tiers {
		if tp.Base > 0 || tp.Per10K > 0 || tp.Cap > 0 {
			tiers[name] = tp
		}
	}
	return &Model{tiers: tiers}
}

// DefaultTiers is the published price card.
var DefaultTiers = map[string]config.TierPricing{
	string(model.TierMonthly):   {Base: 99, Per10K: 5, Cap: 299},
	string(model.TierQuarterly): {Base: 249, Per10K: 10, Cap: 699},
	string(model.TierYearly):    {Base: 899, Per10K: 20, Cap: 1999},
	string(model.TierBundle):    {Base: 2999, Per10K: 50, Cap: 4999},
}

// Price computes the price for a product of the given tier and row count.
// An unknown tier falls back to the monthly table. The result is stable for
// fixed inputs and non-decreasing in rowCount up to the tier's cap.
func (m *Model) Price(tier model.Tier, rowCount int) int {
	tp, ok := m.tiers[string(tier)]
	if !ok {
		tp = m.tiers[string(model.TierMonthly)]
	}
	if rowCount < 0 {
		rowCount = 0
	}
	price := tp.Base + (rowCount/rowsPerBand)*tp.Per10K
	return min(price, tp.Cap)
}
