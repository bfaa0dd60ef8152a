package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactorScorer_Stage(t *testing.T) {
	scorer := NewFactorScorer(DefaultConfig())

	tests := []struct {
		name      string
		stage     string
		preferred []string
		want      float64
	}{
		{"no preference is neutral", "Seed", nil, 80},
		{"direct match", "Series A", []string{"Series A"}, 100},
		{"MVP maps to seed", "MVP", []string{"Seed"}, 100},
		{"early revenue maps to series a", "Early Revenue", []string{"Series A"}, 100},
		{"growth maps to series b", "Growth", []string{"Series B"}, 100},
		{"idea does not reach seed", "Idea", []string{"Seed"}, 0},
		{"unknown stage matches itself", "Bridge", []string{"Bridge"}, 100},
		{"unknown stage mismatch", "Bridge", []string{"Seed"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.stage(tt.stage, tt.preferred))
		})
	}
}

func TestFactorScorer_Funding(t *testing.T) {
	scorer := NewFactorScorer(DefaultConfig())

	tests := []struct {
		name string
		goal float64
		min  float64
		max  float64
		want float64
	}{
		{"inside range", 2_000_000, 1_000_000, 5_000_000, 100},
		{"at lower bound", 1_000_000, 1_000_000, 5_000_000, 100},
		{"at upper bound", 5_000_000, 1_000_000, 5_000_000, 100},
		{"half of minimum", 500_000, 1_000_000, 5_000_000, 30},
		{"double the maximum", 10_000_000, 1_000_000, 5_000_000, 30},
		{"zero goal against zero range", 0, 0, 0, 100},
		{"negative goal", -5, 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorer.funding(tt.goal, tt.min, tt.max), 1e-9)
		})
	}
}

func TestFactorScorer_Location(t *testing.T) {
	scorer := NewFactorScorer(DefaultConfig())

	assert.Equal(t, 100.0, scorer.location("DE", InvestorThesis{NoLocationPref: true, PreferredCountries: []string{"US"}}))
	assert.Equal(t, 90.0, scorer.location("DE", InvestorThesis{}))
	assert.Equal(t, 100.0, scorer.location("US", InvestorThesis{PreferredCountries: []string{"US", "CA"}}))
	assert.Equal(t, 0.0, scorer.location("DE", InvestorThesis{PreferredCountries: []string{"US", "CA"}}))
}

func TestFactorScorer_Score(t *testing.T) {
	scores, reasons := NewFactorScorer(DefaultConfig()).Score(createTestStartup(), createTestThesis())

	assert.Equal(t, FactorScores{
		Industry: 100,
		Stage:    100,
		Funding:  100,
		Location: 100,
		Traction: 80,
		Team:     100,
	}, scores)
	assert.Equal(t, []string{
		"Perfect industry match (Healthcare)",
		"Stage alignment (Seed)",
		"Funding ask within investment range",
	}, reasons)
}

func TestBaseTeam(t *testing.T) {
	assert.Equal(t, 50.0, baseTeam(nil))
	assert.Equal(t, 50.0, baseTeam(&FounderProfile{}))
	assert.Equal(t, 100.0, baseTeam(createTestFounder()))
	assert.Equal(t, 60.0, baseTeam(&FounderProfile{FullName: "Sam", Bio: "short"}))
}

func TestBaseTraction(t *testing.T) {
	assert.Equal(t, 30.0, baseTraction(StartupProfile{}))
	assert.Equal(t, 70.0, baseTraction(StartupProfile{FundingGoal: 100, CurrentFunding: 500}))
	assert.Equal(t, 100.0, baseTraction(StartupProfile{
		FundingGoal:    100,
		CurrentFunding: 100,
		WebsiteURL:     "https://x.example",
		PitchDeckURL:   "https://x.example/deck",
	}))
}
