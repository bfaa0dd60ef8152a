// internal/matching/engine.go
package matching

import (
	"math"
	"strings"
	"time"
)

const (
	reasonSeparator = " • "
	fallbackReason  = "General compatibility based on investment criteria"
)

// Engine combines factor, traction, keyword, recency and diversity scoring
// into a single explainable match. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	cfg      Config
	factors  *FactorScorer
	traction *TractionAnalyzer
	keywords *KeywordScorer
	now      func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(cfg Config, opts ...Option) *Engine {
	cfg = cfg.clone()
	e := &Engine{
		cfg:      cfg,
		factors:  NewFactorScorer(cfg),
		traction: NewTractionAnalyzer(cfg),
		keywords: NewKeywordScorer(cfg),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg.clone()
}

func (e *Engine) ScoreKeywords(text string, keywords, exclude []string) KeywordResult {
	return e.keywords.Score(text, keywords, exclude)
}

func (e *Engine) AnalyzeTraction(startup StartupProfile) TractionResult {
	return e.traction.Analyze(startup)
}

// ScoreMatch scores one startup against one thesis. existing is the frozen
// snapshot of the investor's prior matches used for the diversity bonus.
func (e *Engine) ScoreMatch(startup StartupProfile, thesis InvestorThesis, existing []MatchRecord) MatchResult {
	scores, factorReasons := e.factors.Score(startup, thesis)

	traction := e.traction.Analyze(startup)
	scores.Traction = traction.Score

	kw := e.keywords.Score(startup.SearchText(), thesis.Keywords, thesis.ExcludeKeywords)

	result := MatchResult{
		StartupID:     startup.ID,
		ThesisID:      thesis.ID,
		IndustryScore: roundInt(scores.Industry),
		StageScore:    roundInt(scores.Stage),
		FundingScore:  roundInt(scores.Funding),
		LocationScore: roundInt(scores.Location),
		TractionScore: roundInt(scores.Traction),
		TeamScore:     roundInt(scores.Team),
		Breakdown: MatchBreakdown{
			FactorScores: scores,
			Weights:      thesis.Weights,
			Keywords:     kw,
			Traction:     traction,
		},
	}

	if len(kw.Exclusions) > 0 {
		result.Excluded = true
		result.RecencyFactor = 1
		result.ConfidenceLevel = ConfidenceLow
		result.MatchReason = "Excluded due to: " + strings.Join(kw.Exclusions, ", ")
		return result
	}

	weighted := scores.Weighted(thesis.Weights)

	blended := weighted
	if len(compact(thesis.Keywords)) > 0 {
		blended = weighted*(1-e.cfg.KeywordBlendWeight) + kw.Score*e.cfg.KeywordBlendWeight
	}

	recency := e.cfg.RecencyFactor(startup.CreatedAt, e.now())
	adjusted := blended * ((1 - e.cfg.RecencyInfluence) + e.cfg.RecencyInfluence*recency)

	diversity := e.cfg.DiversityBonus(existing, startup)
	final := math.Min(100, adjusted+diversity)

	signals := e.confidenceSignals(scores, kw, recency)
	reasons := e.buildReasons(factorReasons, kw, traction, diversity)

	result.OverallScore = roundInt(final)
	result.KeywordScore = roundInt(kw.Score)
	result.RecencyFactor = math.Round(recency*100) / 100
	result.DiversityBonus = roundInt(diversity)
	result.ConfidenceLevel = e.confidence(final, signals, len(kw.Matches))
	result.MatchReason = fallbackReason
	if len(reasons) > 0 {
		result.MatchReason = strings.Join(reasons, reasonSeparator)
	}

	result.Breakdown.WeightedScore = weighted
	result.Breakdown.KeywordBlended = blended
	result.Breakdown.RecencyAdjusted = adjusted
	result.Breakdown.DiversityBonus = diversity
	result.Breakdown.FinalScore = final
	result.Breakdown.ConfidenceSignals = signals
	result.Breakdown.Reasons = reasons

	return result
}

// QuickMatch is the cheap path: base factor scores only, no keyword,
// recency or diversity adjustments.
type QuickMatch struct {
	StartupID    string       `json:"startupId"`
	ThesisID     string       `json:"thesisId"`
	OverallScore int          `json:"overallScore"`
	Scores       FactorScores `json:"scores"`
	Reasons      []string     `json:"reasons,omitempty"`
}

func (e *Engine) QuickScore(startup StartupProfile, thesis InvestorThesis) QuickMatch {
	scores, reasons := e.factors.Score(startup, thesis)
	return QuickMatch{
		StartupID:    startup.ID,
		ThesisID:     thesis.ID,
		OverallScore: roundInt(math.Min(100, scores.Weighted(thesis.Weights))),
		Scores:       scores,
		Reasons:      reasons,
	}
}

func (e *Engine) confidenceSignals(scores FactorScores, kw KeywordResult, recency float64) int {
	rules := e.cfg.Confidence
	signals := 0
	for _, ok := range []bool{
		scores.Industry >= rules.StrongFactor,
		scores.Stage >= rules.StrongFactor,
		scores.Traction >= rules.StrongTraction,
		len(kw.Matches) >= rules.MinKeywordMatches,
		recency > rules.FreshRecency,
	} {
		if ok {
			signals++
		}
	}
	return signals
}

func (e *Engine) confidence(score float64, signals, keywordMatches int) ConfidenceLevel {
	rules := e.cfg.Confidence
	switch {
	case score >= rules.HighScore && signals >= rules.MinHighSignals:
		return ConfidenceHigh
	case score < rules.LowScore || keywordMatches == 0:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func (e *Engine) buildReasons(factorReasons []string, kw KeywordResult, traction TractionResult, diversity float64) []string {
	reasons := append([]string(nil), factorReasons...)

	if len(kw.Matches) > 0 {
		reasons = append(reasons, "Keywords: "+strings.Join(firstN(kw.Matches, 2), ", "))
	}
	reasons = append(reasons, firstN(traction.Details, 2)...)
	if diversity > 0 {
		reasons = append(reasons, "Adds diversity to your portfolio")
	}

	return firstN(reasons, e.cfg.MaxReasons)
}

func firstN(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
