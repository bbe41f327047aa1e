package vertical

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/signalforge/datamart/internal/table"
)

// ESG implements the ESG impact & greenwashing detector vertical: claimed
// versus verifiable sustainability actions for large public companies.
type ESG struct{}

func (v *ESG) Slug() string         { return "esg" }
func (v *ESG) Name() string         { return "ESG Impact & Greenwashing Detector" }
func (v *ESG) BaseFilename() string { return "esg_sentiment_tracker" }

var esgCompanies = []string{"Tesla", "ExxonMobil", "Unilever", "BlackRock", "Patagonia"}

func (v *ESG) Columns() []string {
	return []string{
		"company", "date", "esg_claims", "verifiable_actions",
		"greenwashing_index", "regulatory_risk", "stakeholder_score",
		"impact_verified", "premium_insight", "claims_psi", "reality_psi",
		"greenwashing_gap_pct",
	}
}

type esgRecord struct {
	Company            string
	Date               time.Time
	Claims             int
	VerifiableActions  int
	GreenwashingIndex  int
	RegulatoryRisk     string
	StakeholderScore   int
	ImpactVerifiedPct  int
	PremiumInsight     string
	ClaimsPSI          int
	RealityPSI         int
	GreenwashingGapPct int
}

func (r esgRecord) row() table.Row {
	return table.Row{
		r.Company,
		r.Date.Format(table.DateLayout),
		strconv.Itoa(r.Claims),
		strconv.Itoa(r.VerifiableActions),
		strconv.Itoa(r.GreenwashingIndex),
		r.RegulatoryRisk,
		strconv.Itoa(r.StakeholderScore),
		fmt.Sprintf("%d%%", r.ImpactVerifiedPct),
		r.PremiumInsight,
		strconv.Itoa(r.ClaimsPSI),
		strconv.Itoa(r.RealityPSI),
		strconv.Itoa(r.GreenwashingGapPct),
	}
}

func (v *ESG) Generate(rng *rand.Rand, date time.Time) []table.Row {
	rows := make([]table.Row, 0, len(esgCompanies))
	for _, co := range esgCompanies {
		claims := between(rng, 10, 50)
		verified := int(float64(claims) * uniform(rng, 0.2, 0.9))

		verifiedPct := verified * 100 / claims
		greenwashing := 100 - verifiedPct

		risk := "Low"
		switch {
		case greenwashing > 60:
			risk = "High"
		case greenwashing > 30:
			risk = "Medium"
		}
		stakeholder := between(rng, 40, 95)

		var insight string
		switch {
		case greenwashing > 70:
			insight = fmt.Sprintf("High greenwashing risk - %d%% of claims lack verification", 100-verifiedPct)
		case stakeholder > 85:
			insight = "Strong stakeholder alignment driving brand equity"
		default:
			insight = "Strong on operations but weak on supply chain transparency"
		}

		rec := esgRecord{
			Company:            co,
			Date:               date,
			Claims:             claims,
			VerifiableActions:  verified,
			GreenwashingIndex:  greenwashing,
			RegulatoryRisk:     risk,
			StakeholderScore:   stakeholder,
			ImpactVerifiedPct:  verifiedPct,
			PremiumInsight:     insight,
			ClaimsPSI:          100,
			RealityPSI:         verifiedPct,
			GreenwashingGapPct: 100 - verifiedPct,
		}
		rows = append(rows, rec.row())
	}
	return rows
}
