// internal/matching/config.go
package matching

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var defaultSynonymsYAML []byte

type KeywordWeights struct {
	Full     float64
	Partial  float64
	Semantic float64
}

type TractionWeights struct {
	Funding float64
	Market  float64
	Team    float64
	Product float64
}

type DiversityBonuses struct {
	Industry float64
	Stage    float64
	Location float64
}

type ConfidenceRules struct {
	HighScore         float64
	LowScore          float64
	MinHighSignals    int
	StrongFactor      float64
	StrongTraction    float64
	MinKeywordMatches int
	FreshRecency      float64
}

// Config holds every scoring constant. It is passed by value; NewEngine
// takes its own copy of the maps so later edits by the caller do not leak
// into a running engine.
type Config struct {
	NeutralKeywordScore  float64
	KeywordWeights       KeywordWeights
	Synonyms             map[string][]string
	NeutralIndustryScore float64
	NeutralStageScore    float64
	NeutralLocationScore float64
	OutOfRangeFunding    float64
	StageMapping         map[string][]string
	StageReadiness       map[string]float64
	UnknownStageScore    float64
	Traction             TractionWeights
	RecencyGraceDays     int
	RecencyDecay         float64
	MinRecencyFactor     float64
	RecencyInfluence     float64
	Diversity            DiversityBonuses
	KeywordBlendWeight   float64
	Confidence           ConfidenceRules
	MaxReasons           int
	WeightSumTolerance   float64
}

func DefaultConfig() Config {
	synonyms, err := ParseSynonyms(defaultSynonymsYAML)
	if err != nil {
		panic(fmt.Sprintf("matching: embedded synonyms are invalid: %v", err))
	}

	return Config{
		NeutralKeywordScore: 80,
		KeywordWeights: KeywordWeights{
			Full:     1.0,
			Partial:  0.6,
			Semantic: 0.3,
		},
		Synonyms:             synonyms,
		NeutralIndustryScore: 80,
		NeutralStageScore:    80,
		NeutralLocationScore: 90,
		OutOfRangeFunding:    60,
		StageMapping: map[string][]string{
			"Idea":          {"Pre-Seed"},
			"MVP":           {"Pre-Seed", "Seed"},
			"Pre-Seed":      {"Pre-Seed"},
			"Early Revenue": {"Seed", "Series A"},
			"Seed":          {"Seed"},
			"Series A":      {"Series A"},
			"Series B":      {"Series B"},
			"Series C+":     {"Series C+", "Growth"},
			"Growth":        {"Series B", "Series C+", "Growth"},
			"IPO Ready":     {"Growth", "Late Stage"},
		},
		StageReadiness: map[string]float64{
			"Idea":          20,
			"MVP":           40,
			"Pre-Seed":      45,
			"Early Revenue": 55,
			"Seed":          60,
			"Series A":      75,
			"Series B":      85,
			"Growth":        90,
			"Series C+":     95,
			"IPO Ready":     100,
		},
		UnknownStageScore: 30,
		Traction: TractionWeights{
			Funding: 0.25,
			Market:  0.20,
			Team:    0.30,
			Product: 0.25,
		},
		RecencyGraceDays: 30,
		RecencyDecay:     0.95,
		MinRecencyFactor: 0.8,
		RecencyInfluence: 0.05,
		Diversity: DiversityBonuses{
			Industry: 5,
			Stage:    3,
			Location: 2,
		},
		KeywordBlendWeight: 0.1,
		Confidence: ConfidenceRules{
			HighScore:         85,
			LowScore:          45,
			MinHighSignals:    3,
			StrongFactor:      90,
			StrongTraction:    70,
			MinKeywordMatches: 2,
			FreshRecency:      0.95,
		},
		MaxReasons:         3,
		WeightSumTolerance: 0.01,
	}
}

// WithSynonyms returns a copy of c using the given synonym table.
func (c Config) WithSynonyms(synonyms map[string][]string) Config {
	c.Synonyms = synonyms
	return c.clone()
}

func (c Config) clone() Config {
	out := c
	out.Synonyms = make(map[string][]string, len(c.Synonyms))
	for k, v := range c.Synonyms {
		out.Synonyms[strings.ToLower(strings.TrimSpace(k))] = append([]string(nil), v...)
	}
	out.StageMapping = make(map[string][]string, len(c.StageMapping))
	for k, v := range c.StageMapping {
		out.StageMapping[k] = append([]string(nil), v...)
	}
	out.StageReadiness = make(map[string]float64, len(c.StageReadiness))
	for k, v := range c.StageReadiness {
		out.StageReadiness[k] = v
	}
	return out
}

type synonymFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// ParseSynonyms decodes a YAML synonym table of the form
//
//	synonyms:
//	  ai: [artificial intelligence, machine learning]
func ParseSynonyms(data []byte) (map[string][]string, error) {
	var f synonymFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse synonyms: %w", err)
	}

	out := make(map[string][]string, len(f.Synonyms))
	for keyword, list := range f.Synonyms {
		key := strings.ToLower(strings.TrimSpace(keyword))
		if key == "" {
			return nil, fmt.Errorf("parse synonyms: empty keyword")
		}
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out[key] = append(out[key], s)
			}
		}
	}
	return out, nil
}

func ReadSynonyms(r io.Reader) (map[string][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}
	return ParseSynonyms(data)
}

func LoadSynonymsFile(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open synonyms file %s: %w", path, err)
	}
	defer f.Close()
	return ReadSynonyms(f)
}
