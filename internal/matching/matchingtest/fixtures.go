// Package matchingtest provides fixed records and a pinned-clock engine for
// tests of packages built on the matching engine.
package matchingtest

import (
	"fmt"
	"strings"
	"time"

	"dealflow-workers/internal/matching"
)

// Now is the instant the test engine treats as the present.
var Now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func Engine() *matching.Engine {
	return matching.NewEngine(matching.DefaultConfig(), matching.WithClock(func() time.Time { return Now }))
}

// Startup is a seed-stage healthcare company that scores 98 with high
// confidence against Thesis.
func Startup() matching.StartupProfile {
	return matching.StartupProfile{
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
		CreatedAt:      Now.Add(-5 * 24 * time.Hour),
		Founder: &matching.FounderProfile{
			FullName:    "Dana Reyes",
			Bio:         strings.Repeat("Former clinician and data scientist building diagnostic tooling. ", 2),
			Company:     "MedTech Corp",
			LinkedInURL: "https://linkedin.com/in/danareyes",
			Location:    "Boston",
		},
	}
}

func Thesis() matching.InvestorThesis {
	return matching.InvestorThesis{
		ID:                  "thesis-123",
		InvestorID:          "investor-1",
		MinFundingAsk:       1_000_000,
		MaxFundingAsk:       5_000_000,
		PreferredIndustries: []string{"Healthcare", "Technology"},
		PreferredStages:     []string{"Seed", "Series A"},
		NoLocationPref:      true,
		Keywords:            []string{"AI", "healthcare", "machine learning"},
		ExcludeKeywords:     []string{"crypto", "gambling"},
		Weights: matching.FactorWeights{
			Industry: 0.25,
			Stage:    0.20,
			Funding:  0.20,
			Location: 0.10,
			Traction: 0.15,
			Team:     0.10,
		},
	}
}

// Excluded returns Startup renamed so the thesis's exclude list hits it.
func Excluded(id string) matching.StartupProfile {
	s := Startup()
	s.ID = id
	s.Name = "CryptoHealth AI"
	return s
}

// Weak returns a pre-seed fintech startup that matches Thesis poorly.
func Weak(id string) matching.StartupProfile {
	return matching.StartupProfile{
		ID:          id,
		Name:        fmt.Sprintf("Ledger %s", id),
		Description: "Bookkeeping for small shops.",
		Industry:    "Fintech",
		Stage:       "Pre-Seed",
		FundingGoal: 100_000,
		CreatedAt:   Now.Add(-30 * 24 * time.Hour),
	}
}
