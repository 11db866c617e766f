package assessment

import (
	"sort"
	"strings"
)

// IndicatorMatcher categorizes free text into risk-indicator categories.
// Providers run collected snippets through a matcher to populate
// WebIntelResult; the interface exists so the keyword table can be replaced
// with an NLP-backed classifier without touching the providers.
type IndicatorMatcher interface {
	// Match returns the categories whose vocabulary matched the text, in a
	// stable order.
	Match(text string) []string

	// HighRisk reports whether the text hits the high-risk vocabulary that
	// attracts the extra scoring bonus.
	HighRisk(text string) bool

	// Describe renders a category as a human-readable indicator description.
	Describe(category string) string
}

// DefaultVocabulary is the built-in keyword table, keyed by category.
// Matching is case-insensitive substring containment.
var DefaultVocabulary = map[string][]string{
	"sanctions":        {"sanctions", "sanctioned", "ofac", "sdn list", "embargo", "asset freeze"},
	"criminal":         {"criminal", "arrest", "charged", "convicted", "fraud", "embezzlement"},
	"investigation":    {"investigation", "probe", "inquiry", "under investigation", "being investigated"},
	"money_laundering": {"money laundering", "aml violation", "financial crime", "suspicious transactions"},
	"terrorism":        {"terrorism", "terrorist", "terror financing", "terrorist organization"},
	"corruption":       {"corruption", "bribery", "corrupt", "kickback", "corrupt practices"},
	"regulatory":       {"regulatory violation", "compliance violation", "penalty", "fine", "settlement"},
}

// defaultHighRiskTerms attract the extra web-score bonus per finding.
var defaultHighRiskTerms = []string{"sanctions", "terrorism", "criminal", "money laundering"}

// KeywordMatcher is the substring-based IndicatorMatcher used by default.
type KeywordMatcher struct {
	vocabulary map[string][]string
	highRisk   []string
	categories []string
}

// NewKeywordMatcher builds a matcher over the given vocabulary. Passing nil
// uses DefaultVocabulary.
func NewKeywordMatcher(vocabulary map[string][]string) *KeywordMatcher {
	if vocabulary == nil {
		vocabulary = DefaultVocabulary
	}
	cats := make([]string, 0, len(vocabulary))
	for c := range vocabulary {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return &KeywordMatcher{
		vocabulary: vocabulary,
		highRisk:   defaultHighRiskTerms,
		categories: cats,
	}
}

// Match implements IndicatorMatcher. Categories come back in sorted order so
// repeated runs over the same text are deterministic.
func (m *KeywordMatcher) Match(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, cat := range m.categories {
		for _, kw := range m.vocabulary[cat] {
			if strings.Contains(lower, kw) {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}

// HighRisk implements IndicatorMatcher.
func (m *KeywordMatcher) HighRisk(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range m.highRisk {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Describe implements IndicatorMatcher: "money_laundering" becomes
// "Money Laundering indicators found".
func (m *KeywordMatcher) Describe(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " indicators found"
}
