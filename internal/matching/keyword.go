// internal/matching/keyword.go
package matching

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeywordScorer scores free text against a thesis' include/exclude keyword
// lists. Semantic matches come from a static synonym table.
type KeywordScorer struct {
	weights  KeywordWeights
	neutral  float64
	synonyms map[string][]string
}

func NewKeywordScorer(cfg Config) *KeywordScorer {
	return &KeywordScorer{
		weights:  cfg.KeywordWeights,
		neutral:  cfg.NeutralKeywordScore,
		synonyms: cfg.Synonyms,
	}
}

// ScoreKeywords scores text with the default configuration.
func ScoreKeywords(text string, keywords, exclude []string) KeywordResult {
	return NewKeywordScorer(DefaultConfig()).Score(text, keywords, exclude)
}

func (k *KeywordScorer) Score(text string, keywords, exclude []string) KeywordResult {
	keywords = compact(keywords)
	exclude = compact(exclude)

	result := KeywordResult{
		Matches:    []string{},
		Exclusions: []string{},
	}
	if len(keywords) == 0 && len(exclude) == 0 {
		result.Score = k.neutral
		return result
	}

	// Plain lowercasing, not full case folding: "ß" must not match "ss".
	// cases.Caser keeps state, so one per call.
	lower := cases.Lower(language.Und)
	lowered := lower.String(text)

	if excluded := findExclusions(lower, lowered, exclude); len(excluded) > 0 {
		result.Exclusions = excluded
		result.Score = 0
		return result
	}

	if len(keywords) == 0 {
		result.Score = k.neutral
		return result
	}

	var total float64
	for _, kw := range keywords {
		needle := lower.String(kw)

		switch {
		case containsWord(lowered, needle):
			total += k.weights.Full
			result.Matches = append(result.Matches, kw)
		case strings.Contains(lowered, needle):
			total += k.weights.Partial
			result.Matches = append(result.Matches, kw)
			result.PartialMatches = append(result.PartialMatches, kw)
		default:
			if syn, ok := k.findSynonym(lower, lowered, kw); ok {
				total += k.weights.Semantic
				result.SemanticMatches = append(result.SemanticMatches, SemanticMatch{
					Keyword: kw,
					Synonym: syn,
				})
			}
		}
	}

	result.Score = math.Min(100, total/float64(len(keywords))*100)
	return result
}

func (k *KeywordScorer) findSynonym(lower cases.Caser, lowered, keyword string) (string, bool) {
	for _, syn := range k.synonyms[strings.ToLower(keyword)] {
		if strings.Contains(lowered, lower.String(syn)) {
			return syn, true
		}
	}
	return "", false
}

// findExclusions reports, in list order, every exclude keyword that occurs
// anywhere in lowered. One automaton pass covers the whole list.
func findExclusions(lower cases.Caser, lowered string, exclude []string) []string {
	if len(exclude) == 0 {
		return nil
	}

	dict := make([]string, 0, len(exclude))
	originals := make([]string, 0, len(exclude))
	seen := make(map[string]bool, len(exclude))
	for _, kw := range exclude {
		norm := lower.String(kw)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		dict = append(dict, norm)
		originals = append(originals, kw)
	}

	hits := ahocorasick.NewStringMatcher(dict).Match([]byte(lowered))
	if len(hits) == 0 {
		return nil
	}

	hit := make(map[int]bool, len(hits))
	for _, idx := range hits {
		hit[idx] = true
	}

	out := make([]string, 0, len(hits))
	for i, kw := range originals {
		if hit[i] {
			out = append(out, kw)
		}
	}
	return out
}

// containsWord reports whether word occurs in text bounded by non-word
// characters on both sides.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}

	offset := 0
	for offset <= len(text) {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)

		if !wordRuneBefore(text, start) && !wordRuneAfter(text, end) {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func wordRuneBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func wordRuneAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func compact(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
