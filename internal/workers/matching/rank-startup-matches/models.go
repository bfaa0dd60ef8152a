package rankstartupmatches

import "dealflow-workers/internal/matching"

type Input struct {
	ThesisID        string                    `json:"thesisId,omitempty"`
	Thesis          *matching.InvestorThesis  `json:"thesis,omitempty"`
	Startups        []matching.StartupProfile `json:"startups,omitempty"`
	ExistingMatches []matching.MatchRecord    `json:"existingMatches,omitempty"`
	Limit           int                       `json:"limit,omitempty"`
	IncludeExcluded bool                      `json:"includeExcluded,omitempty"`
}

type RankedMatch struct {
	Rank    int    `json:"rank"`
	MatchID string `json:"matchId"`
	matching.MatchResult
}

type Output struct {
	BatchID       string        `json:"batchId"`
	ThesisID      string        `json:"thesisId"`
	Matches       []RankedMatch `json:"matches"`
	TotalScored   int           `json:"totalScored"`
	ExcludedCount int           `json:"excludedCount"`
	// CandidateSource is "input" or "search".
	CandidateSource string `json:"candidateSource"`
}
