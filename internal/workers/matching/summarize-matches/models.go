package summarizematches

import "dealflow-workers/internal/matching"

// Input takes matches inline or an investor whose stored matches are read.
// A present but empty matches list is summarized as-is.
type Input struct {
	InvestorID string                 `json:"investorId,omitempty"`
	Matches    []matching.MatchRecord `json:"matches"`
	Limit      int                    `json:"limit,omitempty"`
}

type Output struct {
	InvestorID string `json:"investorId,omitempty"`
	matching.AnalyticsSummary
}
