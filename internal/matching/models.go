// internal/matching/models.go
package matching

import "time"

type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

type FounderProfile struct {
	FullName    string `json:"fullName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Company     string `json:"company,omitempty"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`
	Location    string `json:"location,omitempty"`
}

// StartupProfile is the read-only fundraising record of a startup. Empty
// URL fields mean the asset is absent.
type StartupProfile struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Tagline        string          `json:"tagline,omitempty"`
	Description    string          `json:"description,omitempty"`
	Industry       string          `json:"industry"`
	Stage          string          `json:"stage"`
	FundingGoal    float64         `json:"fundingGoal"`
	CurrentFunding float64         `json:"currentFunding"`
	Location       string          `json:"location,omitempty"`
	WebsiteURL     string          `json:"websiteUrl,omitempty"`
	LogoURL        string          `json:"logoUrl,omitempty"`
	PitchDeckURL   string          `json:"pitchDeckUrl,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	Founder        *FounderProfile `json:"founder,omitempty"`
}

// SearchText is the text scanned by keyword rules.
func (s StartupProfile) SearchText() string {
	return s.Name + " " + s.Tagline + " " + s.Description
}

type FactorWeights struct {
	Industry float64 `json:"industry"`
	Stage    float64 `json:"stage"`
	Funding  float64 `json:"funding"`
	Location float64 `json:"location"`
	Traction float64 `json:"traction"`
	Team     float64 `json:"team"`
}

func (w FactorWeights) Sum() float64 {
	return w.Industry + w.Stage + w.Funding + w.Location + w.Traction + w.Team
}

// InvestorThesis holds an investor's matching criteria. Empty preference
// lists mean "no preference".
type InvestorThesis struct {
	ID                  string        `json:"id"`
	InvestorID          string        `json:"investorId,omitempty"`
	MinFundingAsk       float64       `json:"minFundingAsk"`
	MaxFundingAsk       float64       `json:"maxFundingAsk"`
	PreferredIndustries []string      `json:"preferredIndustries,omitempty"`
	PreferredStages     []string      `json:"preferredStages,omitempty"`
	NoLocationPref      bool          `json:"noLocationPref"`
	PreferredCountries  []string      `json:"preferredCountries,omitempty"`
	Keywords            []string      `json:"keywords,omitempty"`
	ExcludeKeywords     []string      `json:"excludeKeywords,omitempty"`
	Weights             FactorWeights `json:"weights"`
}

type FactorScores struct {
	Industry float64 `json:"industry"`
	Stage    float64 `json:"stage"`
	Funding  float64 `json:"funding"`
	Location float64 `json:"location"`
	Traction float64 `json:"traction"`
	Team     float64 `json:"team"`
}

// Weighted returns the plain weighted sum. Weights are not renormalised.
func (f FactorScores) Weighted(w FactorWeights) float64 {
	return f.Industry*w.Industry +
		f.Stage*w.Stage +
		f.Funding*w.Funding +
		f.Location*w.Location +
		f.Traction*w.Traction +
		f.Team*w.Team
}

type SemanticMatch struct {
	Keyword string `json:"keyword"`
	Synonym string `json:"synonym"`
}

type KeywordResult struct {
	Score           float64         `json:"score"`
	Matches         []string        `json:"matches"`
	PartialMatches  []string        `json:"partialMatches,omitempty"`
	SemanticMatches []SemanticMatch `json:"semanticMatches,omitempty"`
	Exclusions      []string        `json:"exclusions"`
}

type TractionMetrics struct {
	FundingProgress  float64 `json:"fundingProgress"`
	MarketPresence   float64 `json:"marketPresence"`
	TeamStrength     float64 `json:"teamStrength"`
	ProductReadiness float64 `json:"productReadiness"`
}

type TractionResult struct {
	Score   float64         `json:"score"`
	Metrics TractionMetrics `json:"metrics"`
	Details []string        `json:"details"`
}

// MatchBreakdown keeps the unrounded intermediate values of a match.
type MatchBreakdown struct {
	FactorScores      FactorScores   `json:"factorScores"`
	Weights           FactorWeights  `json:"weights"`
	WeightedScore     float64        `json:"weightedScore"`
	KeywordBlended    float64        `json:"keywordBlended"`
	RecencyAdjusted   float64        `json:"recencyAdjusted"`
	DiversityBonus    float64        `json:"diversityBonus"`
	FinalScore        float64        `json:"finalScore"`
	ConfidenceSignals int            `json:"confidenceSignals"`
	Keywords          KeywordResult  `json:"keywords"`
	Traction          TractionResult `json:"traction"`
	Reasons           []string       `json:"reasons,omitempty"`
}

type MatchResult struct {
	StartupID       string          `json:"startupId"`
	ThesisID        string          `json:"thesisId"`
	OverallScore    int             `json:"overallScore"`
	IndustryScore   int             `json:"industryScore"`
	StageScore      int             `json:"stageScore"`
	FundingScore    int             `json:"fundingScore"`
	LocationScore   int             `json:"locationScore"`
	TractionScore   int             `json:"tractionScore"`
	TeamScore       int             `json:"teamScore"`
	KeywordScore    int             `json:"keywordScore"`
	RecencyFactor   float64         `json:"recencyFactor"`
	DiversityBonus  int             `json:"diversityBonus"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	MatchReason     string          `json:"matchReason"`
	Excluded        bool            `json:"excluded"`
	Breakdown       MatchBreakdown  `json:"breakdown"`
}

// Record converts a result into the shape used for diversity and analytics.
func (r MatchResult) Record(startup StartupProfile) MatchRecord {
	return MatchRecord{
		StartupID:       r.StartupID,
		OverallScore:    float64(r.OverallScore),
		ConfidenceLevel: r.ConfidenceLevel,
		Startup: &StartupSummary{
			ID:       startup.ID,
			Name:     startup.Name,
			Industry: startup.Industry,
			Stage:    startup.Stage,
			Location: startup.Location,
		},
	}
}

type StartupSummary struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Industry string `json:"industry,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Location string `json:"location,omitempty"`
}

// MatchRecord is a previously produced match as seen by diversity and
// analytics. Startup may be nil when the caller did not join it.
type MatchRecord struct {
	StartupID       string          `json:"startupId,omitempty"`
	OverallScore    float64         `json:"overallScore"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	Startup         *StartupSummary `json:"startup,omitempty"`
}

type ScoreDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
}

type SummaryStats struct {
	TotalMatches          int               `json:"totalMatches"`
	AverageScore          float64           `json:"averageScore"`
	HighConfidenceMatches int               `json:"highConfidenceMatches"`
	IndustryDistribution  map[string]int    `json:"industryDistribution"`
	StageDistribution     map[string]int    `json:"stageDistribution"`
	ScoreDistribution     ScoreDistribution `json:"scoreDistribution"`
}

type AnalyticsSummary struct {
	Summary         SummaryStats `json:"summary"`
	Insights        []string     `json:"insights"`
	Recommendations []string     `json:"recommendations"`
}

type WeightValidation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
