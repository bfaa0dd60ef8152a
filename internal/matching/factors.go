// internal/matching/factors.go
package matching

import (
	"fmt"
	"math"
)

// FactorScorer computes the six independent per-factor scores from the raw
// startup and thesis fields.
type FactorScorer struct {
	cfg Config
}

func NewFactorScorer(cfg Config) *FactorScorer {
	return &FactorScorer{cfg: cfg}
}

// Score returns all six factor scores plus reason fragments for the ones
// that fit perfectly. Traction here is the quick base estimate.
func (f *FactorScorer) Score(startup StartupProfile, thesis InvestorThesis) (FactorScores, []string) {
	var reasons []string

	industry := f.industry(startup.Industry, thesis.PreferredIndustries)
	if industry == 100 {
		reasons = append(reasons, fmt.Sprintf("Perfect industry match (%s)", startup.Industry))
	}

	stage := f.stage(startup.Stage, thesis.PreferredStages)
	if stage == 100 {
		reasons = append(reasons, fmt.Sprintf("Stage alignment (%s)", startup.Stage))
	}

	funding := f.funding(startup.FundingGoal, thesis.MinFundingAsk, thesis.MaxFundingAsk)
	if funding == 100 {
		reasons = append(reasons, "Funding ask within investment range")
	}

	scores := FactorScores{
		Industry: industry,
		Stage:    stage,
		Funding:  funding,
		Location: f.location(startup.Location, thesis),
		Traction: baseTraction(startup),
		Team:     baseTeam(startup.Founder),
	}
	return scores, reasons
}

func (f *FactorScorer) industry(industry string, preferred []string) float64 {
	if len(preferred) == 0 {
		return f.cfg.NeutralIndustryScore
	}
	if contains(preferred, industry) {
		return 100
	}
	return 0
}

func (f *FactorScorer) stage(stage string, preferred []string) float64 {
	if len(preferred) == 0 {
		return f.cfg.NeutralStageScore
	}

	mapped, ok := f.cfg.StageMapping[stage]
	if !ok {
		mapped = []string{stage}
	}
	for _, s := range mapped {
		if contains(preferred, s) {
			return 100
		}
	}
	return 0
}

func (f *FactorScorer) funding(goal, minAsk, maxAsk float64) float64 {
	switch {
	case goal >= minAsk && goal <= maxAsk:
		return 100
	case goal < minAsk:
		if minAsk <= 0 {
			return 0
		}
		return math.Max(0, goal/minAsk*f.cfg.OutOfRangeFunding)
	default:
		if goal <= 0 {
			return 0
		}
		return math.Max(0, maxAsk/goal*f.cfg.OutOfRangeFunding)
	}
}

func (f *FactorScorer) location(location string, thesis InvestorThesis) float64 {
	if thesis.NoLocationPref {
		return 100
	}
	if len(thesis.PreferredCountries) == 0 {
		return f.cfg.NeutralLocationScore
	}
	if contains(thesis.PreferredCountries, location) {
		return 100
	}
	return 0
}

// baseTraction is the cheap estimate used when no traction analysis runs.
func baseTraction(s StartupProfile) float64 {
	score := 30.0
	if ratio := fundingRatio(s.CurrentFunding, s.FundingGoal); ratio > 0 {
		score += math.Min(40, ratio*40)
	}
	if s.WebsiteURL != "" {
		score += 15
	}
	if s.PitchDeckURL != "" {
		score += 15
	}
	return math.Min(100, score)
}

func baseTeam(f *FounderProfile) float64 {
	score := 50.0
	if f == nil {
		return score
	}
	if f.FullName != "" {
		score += 10
	}
	if len(f.Bio) > 50 {
		score += 15
	}
	if f.Company != "" {
		score += 10
	}
	if f.LinkedInURL != "" {
		score += 10
	}
	if f.Location != "" {
		score += 5
	}
	return math.Min(100, score)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
