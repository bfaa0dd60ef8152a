// internal/matching/adjust.go
package matching

import (
	"math"
	"time"
)

// RecencyFactor maps a listing's creation time to a decay multiplier in
// [MinRecencyFactor, 1]. Listings inside the grace period are not decayed.
// A zero createdAt is treated as fully decayed.
func (c Config) RecencyFactor(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return c.MinRecencyFactor
	}

	ageDays := int(now.Sub(createdAt).Hours() / 24)
	if ageDays <= c.RecencyGraceDays {
		return 1.0
	}
	return math.Max(c.MinRecencyFactor, math.Pow(c.RecencyDecay, float64(ageDays-c.RecencyGraceDays)))
}

// RecencyFactor uses the default decay settings.
func RecencyFactor(createdAt, now time.Time) float64 {
	return DefaultConfig().RecencyFactor(createdAt, now)
}

// DiversityBonus rewards a candidate whose industry, stage or location is
// not yet represented among existing matches. Values missing on prior
// matches are ignored.
func (c Config) DiversityBonus(existing []MatchRecord, candidate StartupProfile) float64 {
	if len(existing) == 0 {
		return 0
	}

	industries := make(map[string]bool)
	stages := make(map[string]bool)
	locations := make(map[string]bool)
	for _, m := range existing {
		if m.Startup == nil {
			continue
		}
		if m.Startup.Industry != "" {
			industries[m.Startup.Industry] = true
		}
		if m.Startup.Stage != "" {
			stages[m.Startup.Stage] = true
		}
		if m.Startup.Location != "" {
			locations[m.Startup.Location] = true
		}
	}

	var bonus float64
	if candidate.Industry != "" && !industries[candidate.Industry] {
		bonus += c.Diversity.Industry
	}
	if candidate.Stage != "" && !stages[candidate.Stage] {
		bonus += c.Diversity.Stage
	}
	if candidate.Location != "" && !locations[candidate.Location] {
		bonus += c.Diversity.Location
	}
	return bonus
}

func DiversityBonus(existing []MatchRecord, candidate StartupProfile) float64 {
	return DefaultConfig().DiversityBonus(existing, candidate)
}
