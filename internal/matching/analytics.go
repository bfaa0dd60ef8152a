// internal/matching/analytics.go
package matching

import (
	"fmt"
	"sort"
	"strings"
)

const unknownCategory = "Unknown"

var emptyRecommendations = []string{
	"Review your industry preferences to include adjacent sectors",
	"Adjust your funding range to cover more startups",
	"Consider startups at an earlier stage",
}

// Summarize aggregates match records into statistics, insights and
// rule-based recommendations. It is computed on demand and never cached.
func Summarize(records []MatchRecord) AnalyticsSummary {
	stats := SummaryStats{
		IndustryDistribution: map[string]int{},
		StageDistribution:    map[string]int{},
	}

	if len(records) == 0 {
		return AnalyticsSummary{
			Summary:         stats,
			Insights:        []string{"No matches found"},
			Recommendations: append([]string(nil), emptyRecommendations...),
		}
	}

	var total float64
	for _, r := range records {
		total += r.OverallScore
		if r.ConfidenceLevel == ConfidenceHigh {
			stats.HighConfidenceMatches++
		}

		industry, stage := unknownCategory, unknownCategory
		if r.Startup != nil {
			industry = orUnknown(r.Startup.Industry)
			stage = orUnknown(r.Startup.Stage)
		}
		stats.IndustryDistribution[industry]++
		stats.StageDistribution[stage]++

		switch {
		case r.OverallScore >= 80:
			stats.ScoreDistribution.Excellent++
		case r.OverallScore >= 60:
			stats.ScoreDistribution.Good++
		case r.OverallScore >= 40:
			stats.ScoreDistribution.Fair++
		default:
			stats.ScoreDistribution.Poor++
		}
	}
	stats.TotalMatches = len(records)
	stats.AverageScore = total / float64(len(records))

	highRatio := float64(stats.HighConfidenceMatches) / float64(stats.TotalMatches)

	insights := []string{
		fmt.Sprintf("Found %d matches with an average score of %.1f", stats.TotalMatches, stats.AverageScore),
		fmt.Sprintf("%.0f%% of matches have high confidence", highRatio*100),
	}
	if top := topCategories(stats.IndustryDistribution, 3); len(top) > 0 {
		insights = append(insights, "Top industries: "+strings.Join(top, ", "))
	}

	recommendations := []string{}
	if stats.AverageScore < 50 {
		recommendations = append(recommendations,
			"Average match score is low; consider loosening your industry, stage or funding criteria")
	}
	if highRatio < 0.2 {
		recommendations = append(recommendations,
			"Few high-confidence matches; refine your thesis weights toward the factors that matter most")
	}
	if stats.ScoreDistribution.Excellent < 5 && stats.TotalMatches > 20 {
		recommendations = append(recommendations,
			"Focus outreach on the top 10% of matches by score")
	}

	return AnalyticsSummary{
		Summary:         stats,
		Insights:        insights,
		Recommendations: recommendations,
	}
}

func orUnknown(v string) string {
	if v == "" {
		return unknownCategory
	}
	return v
}

// topCategories returns "name (count)" for the n most frequent keys, ties
// broken alphabetically.
func topCategories(dist map[string]int, n int) []string {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if dist[keys[i]] != dist[keys[j]] {
			return dist[keys[i]] > dist[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := make([]string, 0, n)
	for _, k := range firstN(keys, n) {
		out = append(out, fmt.Sprintf("%s (%d)", k, dist[k]))
	}
	return out
}
