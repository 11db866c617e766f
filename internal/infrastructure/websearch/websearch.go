// Package websearch holds the pieces shared by the web-intelligence
// providers: the trusted-source domain table, URL handling, and the
// sentiment estimate applied to collected hit texts.
package websearch

import (
	"net/url"
	"strings"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
)

// TrustedDomains maps news and government domains to their source category.
// A hit from a trusted domain carries extra weight in the web component.
var TrustedDomains = map[string]string{
	"bbc.com":            "News",
	"theguardian.com":    "News",
	"apnews.com":         "News",
	"reuters.com":        "News",
	"aljazeera.com":      "News",
	"forbes.com":         "News",
	"npr.org":            "News",
	"dw.com":             "News",
	"abcnews.go.com":     "News",
	"voanews.com":        "News",
	"indiatoday.in":      "News",
	"hindustantimes.com": "News",
	"livemint.com":       "News",
	"france24.com":       "News",
	"opensanctions.org":  "Sanctions",
	"treasury.gov":       "Government",
	"fincen.gov":         "Government",
}

var (
	negativeTerms = []string{"scandal", "investigation", "sanctions", "criminal", "fraud", "violation", "penalty"}
	positiveTerms = []string{"successful", "award", "achievement", "growth", "expansion", "innovation"}
)

// ExtractDomain returns the bare hostname of a URL, with any www. prefix
// stripped.
func ExtractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

// IsTrustedDomain reports whether the domain is in the trusted-source table.
func IsTrustedDomain(domainName string) bool {
	_, ok := TrustedDomains[strings.ToLower(domainName)]
	return ok
}

// EstimateSentiment scores the hit texts on [-1,1] from a small positive and
// negative vocabulary. Compliance coverage skews negative, which is exactly
// the signal wanted here.
func EstimateSentiment(texts []string) float64 {
	var positive, negative, words int
	for _, text := range texts {
		for _, w := range strings.Fields(strings.ToLower(text)) {
			words++
			switch {
			case containsAny(w, negativeTerms):
				negative++
			case containsAny(w, positiveTerms):
				positive++
			}
		}
	}
	if words == 0 {
		return 0
	}
	denom := float64(words) / 10
	if denom < 1 {
		denom = 1
	}
	s := float64(positive-negative) / denom
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return s
}

func containsAny(word string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(word, t) {
			return true
		}
	}
	return false
}

// Hit is one raw search result handed to Analyze. Source may be left empty,
// in which case it is derived from the URL.
type Hit struct {
	Title   string
	Snippet string
	URL     string
	Source  string
}

// Analyze classifies raw hits into a web-intelligence result: indicator
// categories through the matcher, trusted-source and high-risk hit counts,
// and the sentiment estimate. Both web providers feed their hits through
// this so the scoring inputs do not depend on where the hits came from.
func Analyze(matcher domain.IndicatorMatcher, hits []Hit) domain.WebIntelResult {
	res := domain.WebIntelResult{Status: domain.StatusOK}

	seenCategories := make(map[string]struct{})
	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		source := hit.Source
		if source == "" {
			source = ExtractDomain(hit.URL)
		}
		trusted := IsTrustedDomain(source)
		res.Findings = append(res.Findings, domain.WebFinding{
			Title:   hit.Title,
			Snippet: hit.Snippet,
			URL:     hit.URL,
			Source:  source,
			Trusted: trusted,
		})
		if trusted {
			res.TrustedHits++
		}

		text := hit.Title + " " + hit.Snippet
		texts = append(texts, text)
		for _, cat := range matcher.Match(text) {
			if _, dup := seenCategories[cat]; dup {
				continue
			}
			seenCategories[cat] = struct{}{}
			res.Categories = append(res.Categories, cat)
			res.Indicators = append(res.Indicators, matcher.Describe(cat))
		}
		if matcher.HighRisk(text) {
			res.HighRiskHits++
		}
	}

	res.Sentiment = EstimateSentiment(texts)
	return res
}
