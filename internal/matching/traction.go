// internal/matching/traction.go
package matching

import (
	"fmt"
	"math"
	"strings"
)

// TractionAnalyzer derives a composite traction score from funding
// progress, market presence, team strength and product readiness.
type TractionAnalyzer struct {
	weights      TractionWeights
	readiness    map[string]float64
	unknownStage float64
}

func NewTractionAnalyzer(cfg Config) *TractionAnalyzer {
	return &TractionAnalyzer{
		weights:      cfg.Traction,
		readiness:    cfg.StageReadiness,
		unknownStage: cfg.UnknownStageScore,
	}
}

// AnalyzeTraction analyzes a startup with the default configuration.
func AnalyzeTraction(startup StartupProfile) TractionResult {
	return NewTractionAnalyzer(DefaultConfig()).Analyze(startup)
}

func (a *TractionAnalyzer) Analyze(startup StartupProfile) TractionResult {
	details := make([]string, 0, 4)

	funding, detail := fundingProgress(startup.CurrentFunding, startup.FundingGoal)
	details = append(details, detail)

	metrics := TractionMetrics{
		FundingProgress:  funding,
		MarketPresence:   marketPresence(startup),
		TeamStrength:     teamStrength(startup),
		ProductReadiness: a.productReadiness(startup),
	}

	if metrics.MarketPresence >= 75 {
		details = append(details, "Strong market presence")
	}
	if metrics.TeamStrength >= 80 {
		details = append(details, "Well-documented founding team")
	}
	if metrics.ProductReadiness >= 75 {
		details = append(details, fmt.Sprintf("Product maturity at %s stage", startup.Stage))
	}

	score := metrics.FundingProgress*a.weights.Funding +
		metrics.MarketPresence*a.weights.Market +
		metrics.TeamStrength*a.weights.Team +
		metrics.ProductReadiness*a.weights.Product

	return TractionResult{
		Score:   score,
		Metrics: metrics,
		Details: details,
	}
}

func fundingRatio(current, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return current / goal
}

func fundingProgress(current, goal float64) (float64, string) {
	ratio := fundingRatio(current, goal)
	pct := ratio * 100

	switch {
	case ratio > 0.8:
		return 100, fmt.Sprintf("Nearly fully funded (%.0f%% of goal raised)", pct)
	case ratio > 0.5:
		return 80 + (ratio-0.5)/0.3*20, fmt.Sprintf("Strong funding momentum (%.0f%% of goal raised)", pct)
	case ratio > 0.2:
		return 60 + (ratio-0.2)/0.3*20, fmt.Sprintf("Solid funding progress (%.0f%% of goal raised)", pct)
	case ratio > 0.05:
		return 40 + (ratio-0.05)/0.15*20, fmt.Sprintf("Early funding traction (%.0f%% of goal raised)", pct)
	case current > 0:
		return 30, "Initial funding secured"
	default:
		return 20, "No funding raised yet"
	}
}

func marketPresence(s StartupProfile) float64 {
	score := 30.0
	if s.WebsiteURL != "" {
		score += 20
	}
	if s.LogoURL != "" {
		score += 10
	}
	if s.PitchDeckURL != "" {
		score += 15
	}
	if s.Founder != nil && s.Founder.LinkedInURL != "" {
		score += 10
	}
	return math.Min(100, score)
}

func teamStrength(s StartupProfile) float64 {
	score := 40.0
	f := s.Founder
	if f == nil {
		return score
	}

	if f.FullName != "" {
		score += 10
	}
	switch bio := len(f.Bio); {
	case bio > 100:
		score += 20
	case bio > 50:
		score += 10
	}
	if f.Company != "" && !strings.EqualFold(f.Company, s.Name) {
		score += 15
	}
	if f.LinkedInURL != "" {
		score += 10
	}
	if f.Location != "" {
		score += 5
	}
	return math.Min(100, score)
}

func (a *TractionAnalyzer) productReadiness(s StartupProfile) float64 {
	score, ok := a.readiness[s.Stage]
	if !ok {
		score = a.unknownStage
	}
	if len(s.Description) > 200 {
		score += 10
	}
	if len(s.Tagline) > 10 {
		score += 5
	}
	return math.Min(100, score)
}
