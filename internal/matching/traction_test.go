package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundingProgress(t *testing.T) {
	tests := []struct {
		name       string
		current    float64
		goal       float64
		wantScore  float64
		wantDetail string
	}{
		{"nearly funded", 900, 1000, 100, "Nearly fully funded (90% of goal raised)"},
		{"over funded", 1500, 1000, 100, "Nearly fully funded (150% of goal raised)"},
		{"strong momentum", 650, 1000, 90, "Strong funding momentum (65% of goal raised)"},
		{"solid progress", 350, 1000, 70, "Solid funding progress (35% of goal raised)"},
		{"early traction", 200, 1000, 60, "Early funding traction (20% of goal raised)"},
		{"initial funding", 10, 1000, 30, "Initial funding secured"},
		{"nothing raised", 0, 1000, 20, "No funding raised yet"},
		{"zero goal with funding", 500, 0, 30, "Initial funding secured"},
		{"zero goal without funding", 0, 0, 20, "No funding raised yet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, detail := fundingProgress(tt.current, tt.goal)

			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}

func TestAnalyzeTraction_Fixture(t *testing.T) {
	result := AnalyzeTraction(createTestStartup())

	assert.InDelta(t, 80, result.Metrics.FundingProgress, 1e-9)
	assert.Equal(t, 85.0, result.Metrics.MarketPresence)
	assert.Equal(t, 100.0, result.Metrics.TeamStrength)
	assert.Equal(t, 75.0, result.Metrics.ProductReadiness)
	assert.InDelta(t, 85.75, result.Score, 1e-9)

	require.Len(t, result.Details, 4)
	assert.Equal(t, "Solid funding progress (50% of goal raised)", result.Details[0])
	assert.Equal(t, "Strong market presence", result.Details[1])
	assert.Equal(t, "Well-documented founding team", result.Details[2])
	assert.Equal(t, "Product maturity at Seed stage", result.Details[3])
}

func TestAnalyzeTraction_BareStartup(t *testing.T) {
	result := AnalyzeTraction(StartupProfile{ID: "bare"})

	assert.Equal(t, 20.0, result.Metrics.FundingProgress)
	assert.Equal(t, 30.0, result.Metrics.MarketPresence)
	assert.Equal(t, 40.0, result.Metrics.TeamStrength)
	assert.Equal(t, 30.0, result.Metrics.ProductReadiness)
	assert.InDelta(t, 20*0.25+30*0.20+40*0.30+30*0.25, result.Score, 1e-9)
	assert.Equal(t, []string{"No funding raised yet"}, result.Details)
}

func TestTeamStrength_CompanyBonus(t *testing.T) {
	startup := createTestStartup()
	startup.Founder.Bio = ""

	withCompany := teamStrength(startup)

	startup.Founder.Company = "ai healthcare solutions"
	sameAsStartup := teamStrength(startup)

	startup.Founder.Company = ""
	noCompany := teamStrength(startup)

	assert.Equal(t, 80.0, withCompany)
	assert.Equal(t, 65.0, sameAsStartup)
	assert.Equal(t, 65.0, noCompany)
}

func TestProductReadiness_Stages(t *testing.T) {
	analyzer := NewTractionAnalyzer(DefaultConfig())

	tests := []struct {
		stage string
		want  float64
	}{
		{"Idea", 20},
		{"Seed", 60},
		{"Series C+", 95},
		{"IPO Ready", 100},
		{"Stealth", 30},
	}

	for _, tt := range tests {
		got := analyzer.productReadiness(StartupProfile{Stage: tt.stage})
		assert.Equal(t, tt.want, got, tt.stage)
	}

	capped := analyzer.productReadiness(StartupProfile{
		Stage:       "IPO Ready",
		Tagline:     "A tagline long enough",
		Description: string(make([]byte, 250)),
	})
	assert.Equal(t, 100.0, capped)
}
