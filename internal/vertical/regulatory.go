package vertical

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/signalforge/datamart/internal/table"
)

// Regulatory implements the regulatory compliance prediction vertical:
// enforcement likelihood and exposure estimates for heavily regulated firms.
type Regulatory struct{}

func (v *Regulatory) Slug() string         { return "regulatory" }
func (v *Regulatory) Name() string         { return "Regulatory Compliance Prediction" }
func (v *Regulatory) BaseFilename() string { return "regulatory_risk_index" }

var regulatoryCompanies = []string{"Meta", "Coinbase", "Amazon", "Pfizer", "Goldman Sachs"}

func (v *Regulatory) Columns() []string {
	return []string{
		"company", "date", "enforcement_probability", "compliance_gap",
		"fines_estimate", "remediation_cost", "whistleblower_risk",
		"regulatory_foresight", "premium_insight",
		"enforcement_probability_pct", "fine_impact_usd",
	}
}

type regulatoryRecord struct {
	Company                   string
	Date                      time.Time
	EnforcementProbability    int
	ComplianceGap             string
	FinesEstimateMillions     int
	RemediationCostMillions   int
	WhistleblowerRisk         string
	RegulatoryForesight       int
	PremiumInsight            string
	EnforcementProbabilityPct int
	FineImpactUSD             int64
}

func (r regulatoryRecord) row() table.Row {
	return table.Row{
		r.Company,
		r.Date.Format(table.DateLayout),
		fmt.Sprintf("%d%%", r.EnforcementProbability),
		r.ComplianceGap,
		fmt.Sprintf("$%dM", r.FinesEstimateMillions),
		fmt.Sprintf("$%dM", r.RemediationCostMillions),
		r.WhistleblowerRisk,
		strconv.Itoa(r.RegulatoryForesight),
		r.PremiumInsight,
		strconv.Itoa(r.EnforcementProbabilityPct),
		strconv.FormatInt(r.FineImpactUSD, 10),
	}
}

func (v *Regulatory) Generate(rng *rand.Rand, date time.Time) []table.Row {
	rows := make([]table.Row, 0, len(regulatoryCompanies))
	for _, co := range regulatoryCompanies {
		enfProb := between(rng, 10, 90)

		gap := "Small"
		switch {
		case enfProb > 70:
			gap = "Large"
		case enfProb > 40:
			gap = "Medium"
		}

		whistleblower := "Low"
		if enfProb > 60 {
			whistleblower = "High"
		}
		foresight := between(rng, 20, 90)

		var insight string
		switch {
		case enfProb > 75:
			insight = "High risk of antitrust action - compliance gaps significant"
		case foresight > 80:
			insight = "Proactive compliance strategy mitigating sector risks"
		default:
			insight = "Moderate risk - improving compliance but scrutiny remains"
		}

		rec := regulatoryRecord{
			Company:                   co,
			Date:                      date,
			EnforcementProbability:    enfProb,
			ComplianceGap:             gap,
			FinesEstimateMillions:     between(rng, 10, 5000),
			RemediationCostMillions:   between(rng, 5, 1000),
			WhistleblowerRisk:         whistleblower,
			RegulatoryForesight:       foresight,
			PremiumInsight:            insight,
			EnforcementProbabilityPct: enfProb,
			FineImpactUSD:             int64(between(rng, 10, 5000)) * 1_000_000,
		}
		rows = append(rows, rec.row())
	}
	return rows
}
