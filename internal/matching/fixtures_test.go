package matching

import (
	"strings"
	"time"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), WithClock(fixedClock))
}

func createTestFounder() *FounderProfile {
	return &FounderProfile{
		FullName:    "Dana Reyes",
		Bio:         strings.Repeat("Former clinician and data scientist building diagnostic tooling. ", 2),
		Company:     "MedTech Corp",
		LinkedInURL: "https://linkedin.com/in/danareyes",
		Location:    "Boston",
	}
}

func createTestStartup() StartupProfile {
	return StartupProfile{
		ID:      "startup-123",
		Name:    "AI Healthcare Solutions",
		Tagline: "Diagnostics for every clinic",
		Description: "We apply machine learning to medical imaging so that community clinics can " +
			"detect disease earlier. Our platform integrates with existing hospital systems, " +
			"ships with regulatory documentation, and is already piloting with three regional networks.",
		Industry:       "Healthcare",
		Stage:          "Seed",
		FundingGoal:    2_000_000,
		CurrentFunding: 1_000_000,
		Location:       "US",
		WebsiteURL:     "https://aihealth.example",
		LogoURL:        "https://aihealth.example/logo.png",
		PitchDeckURL:   "https://aihealth.example/deck.pdf",
		CreatedAt:      testNow.Add(-5 * 24 * time.Hour),
		Founder:        createTestFounder(),
	}
}

func createTestThesis() InvestorThesis {
	return InvestorThesis{
		ID:                  "thesis-123",
		InvestorID:          "investor-1",
		MinFundingAsk:       1_000_000,
		MaxFundingAsk:       5_000_000,
		PreferredIndustries: []string{"Healthcare", "Technology"},
		PreferredStages:     []string{"Seed", "Series A"},
		NoLocationPref:      true,
		Keywords:            []string{"AI", "healthcare", "machine learning"},
		ExcludeKeywords:     []string{"crypto", "gambling"},
		Weights: FactorWeights{
			Industry: 0.25,
			Stage:    0.20,
			Funding:  0.20,
			Location: 0.10,
			Traction: 0.15,
			Team:     0.10,
		},
	}
}

func daysAgo(days int) time.Time {
	return testNow.Add(-time.Duration(days) * 24 * time.Hour)
}
