package vertical

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/signalforge/datamart/internal/table"
)

// AITalent implements the AI talent & capital prediction vertical: research
// output and investor-engagement signals for frontier AI labs.
type AITalent struct{}

func (v *AITalent) Slug() string         { return "ai_talent" }
func (v *AITalent) Name() string         { return "AI Talent & Capital Prediction" }
func (v *AITalent) BaseFilename() string { return "ai_talent_heatmap" }

var aiTalentCompanies = []string{"OpenAI", "Anthropic", "StabilityAI", "Cohere", "Hugging Face"}

func (v *AITalent) Columns() []string {
	return []string{
		"company", "date", "github_stars_7d", "arxiv_papers", "citations",
		"patents_filed", "investor_engagement", "funding_probability",
		"technical_momentum", "talent_score", "premium_insight",
		"innovation_delay_days", "benchmark_inflation_pct", "flight_status",
	}
}

type aiTalentRecord struct {
	Company               string
	Date                  time.Time
	GithubStars7d         int
	ArxivPapers           int
	Citations             int
	PatentsFiled          int
	InvestorEngagement    string
	FundingProbability    int
	TechnicalMomentum     int
	TalentScore           int
	PremiumInsight        string
	InnovationDelayDays   int
	BenchmarkInflationPct int
	FlightStatus          string
}

func (r aiTalentRecord) row() table.Row {
	return table.Row{
		r.Company,
		r.Date.Format(table.DateLayout),
		fmt.Sprintf("+%d", r.GithubStars7d),
		strconv.Itoa(r.ArxivPapers),
		strconv.Itoa(r.Citations),
		strconv.Itoa(r.PatentsFiled),
		r.InvestorEngagement,
		fmt.Sprintf("%d%%", r.FundingProbability),
		strconv.Itoa(r.TechnicalMomentum),
		strconv.Itoa(r.TalentScore),
		r.PremiumInsight,
		strconv.Itoa(r.InnovationDelayDays),
		strconv.Itoa(r.BenchmarkInflationPct),
		r.FlightStatus,
	}
}

func (v *AITalent) Generate(rng *rand.Rand, date time.Time) []table.Row {
	rows := make([]table.Row, 0, len(aiTalentCompanies))
	for _, co := range aiTalentCompanies {
		stars := int(expo(rng, 200))
		arxiv := poisson(rng, 2)
		citations := int(expo(rng, 50))
		patents := poisson(rng, 0.5)
		engagement := pick(rng, "High", "Medium", "Low")

		momentum := min(100, arxiv*10+int(float64(citations)*0.5)+stars/10)
		talent := between(rng, 60, 99)
		fundingProb := min(99, int(float64(momentum)*0.8+float64(talent)*0.1))

		delay := pick(rng, 0, 0, 0, 30, 60, 90, 180)
		inflation := between(rng, 0, 50)
		flight := "On Time"
		if delay != 0 {
			flight = "Delayed"
		}
		if momentum > 90 {
			flight = "Accelerating"
		}

		var insight string
		switch {
		case engagement == "High" && momentum > 80:
			insight = "Strong Series D candidate - investor engagement at all-time high"
		case momentum < 40:
			insight = "Momentum slowing - may seek acquisition vs. next round"
		default:
			insight = "Steady technical output, organic growth phase"
		}

		rec := aiTalentRecord{
			Company:               co,
			Date:                  date,
			GithubStars7d:         stars,
			ArxivPapers:           arxiv,
			Citations:             citations,
			PatentsFiled:          patents,
			InvestorEngagement:    engagement,
			FundingProbability:    fundingProb,
			TechnicalMomentum:     momentum,
			TalentScore:           talent,
			PremiumInsight:        insight,
			InnovationDelayDays:   delay,
			BenchmarkInflationPct: inflation,
			FlightStatus:          flight,
		}
		rows = append(rows, rec.row())
	}
	return rows
}
