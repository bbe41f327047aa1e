package model

// Tier identifies a partitioning granularity for sellable products.
type Tier string

const (
	TierBundle    Tier = "bundle"
	TierYearly    Tier = "yearly"
	TierQuarterly Tier = "quarterly"
	TierMonthly   Tier = "monthly"
)

// Tiers lists all tiers in catalog presentation order.
var Tiers = []Tier{TierBundle, TierYearly, TierQuarterly, TierMonthly}

// Rank orders tiers for catalog sorting: bundle first, monthly last.
// Unknown tiers sort after everything known.
func (t Tier) Rank() int {
	switch t {
	case TierBundle:
		return 0
	case TierYearly:
		return 1
	case TierQuarterly:
		return 2
	case TierMonthly:
		return 3
	default:
		return 99
	}
}

// DirName returns the data subdirectory holding this tier's product files.
func (t Tier) DirName() string {
	if t == TierBundle {
		return "bundles"
	}
	return string(t)
}
