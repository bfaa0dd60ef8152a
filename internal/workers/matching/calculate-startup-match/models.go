package calculatestartupmatch

import "dealflow-workers/internal/matching"

// Input carries either IDs to look up or the records themselves. Inline
// records win when both are present.
type Input struct {
	StartupID       string                   `json:"startupId,omitempty"`
	ThesisID        string                   `json:"thesisId,omitempty"`
	Startup         *matching.StartupProfile `json:"startup,omitempty"`
	Thesis          *matching.InvestorThesis `json:"thesis,omitempty"`
	ExistingMatches []matching.MatchRecord   `json:"existingMatches,omitempty"`
}

// Output flattens the score and confidence next to the full result so
// BPMN gateways can branch on them directly.
type Output struct {
	MatchID         string                   `json:"matchId"`
	OverallScore    int                      `json:"overallScore"`
	ConfidenceLevel matching.ConfidenceLevel `json:"confidenceLevel"`
	Excluded        bool                     `json:"excluded"`
	Match           matching.MatchResult     `json:"match"`
	EventPublished  bool                     `json:"eventPublished"`
}
