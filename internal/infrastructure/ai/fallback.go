package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
)

var _ appassessment.Summarizer = (*RuleBasedSummarizer)(nil)

// RuleBasedSummarizer produces a summary from the evidence alone, without a
// model call. It is the standing fallback when no API key is configured and
// the safety net when the API call fails mid-assessment.
type RuleBasedSummarizer struct{}

// NewRuleBasedSummarizer returns the keyword-driven fallback summarizer.
func NewRuleBasedSummarizer() *RuleBasedSummarizer { return &RuleBasedSummarizer{} }

// Summarize implements the application's Summarizer port. It never fails:
// the whole point of the fallback is to keep the assessment moving.
func (s *RuleBasedSummarizer) Summarize(_ context.Context, req appassessment.SummaryRequest) (domain.AISummaryResult, error) {
	subject := subjectName(req)
	indicators := collectIndicators(req)
	sanctioned := sanctionsMatched(req)

	if len(indicators) == 0 && !sanctioned {
		return domain.AISummaryResult{
			Status: domain.StatusEmpty,
			Summary: fmt.Sprintf(
				"No significant risk indicators found for %s based on available information.", subject),
			Score:      0,
			Sentiment:  "neutral",
			Confidence: 0.1,
			Provider:   "rule-based",
		}, nil
	}

	factors := indicators
	if sanctioned {
		factors = append([]string{"watchlist match"}, factors...)
	}

	return domain.AISummaryResult{
		Status: domain.StatusOK,
		Summary: fmt.Sprintf("Analysis of %s indicates the following risk factors: %s.",
			subject, strings.Join(factors, ", ")),
		Score:       ruleScore(req, indicators, sanctioned),
		Sentiment:   overallSentiment(req),
		Confidence:  min(0.8, float64(len(factors))*0.1),
		KeyFindings: factors,
		Provider:    "rule-based",
	}, nil
}

func subjectName(req appassessment.SummaryRequest) string {
	names := make([]string, 0, len(req.Entities))
	for _, e := range req.Entities {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		return "the subject"
	}
	return strings.Join(names, " and ")
}

func collectIndicators(req appassessment.SummaryRequest) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range req.Web {
		for _, ind := range w.Indicators {
			if _, ok := seen[ind]; ok {
				continue
			}
			seen[ind] = struct{}{}
			out = append(out, ind)
		}
	}
	sort.Strings(out)
	return out
}

func sanctionsMatched(req appassessment.SummaryRequest) bool {
	for _, r := range req.Sanctions {
		if r.Matched {
			return true
		}
	}
	return false
}

// ruleScore mirrors the evidence-weighted reading a reviewer would give:
// a watchlist match dominates, each distinct indicator category adds weight,
// high-risk hits add more.
func ruleScore(req appassessment.SummaryRequest, indicators []string, sanctioned bool) float64 {
	score := float64(len(indicators)) * 12
	for _, w := range req.Web {
		score += float64(w.HighRiskHits) * 8
	}
	if sanctioned {
		score += 40
	}
	if score > 100 {
		score = 100
	}
	return score
}

func overallSentiment(req appassessment.SummaryRequest) string {
	var sum float64
	var n int
	for _, w := range req.Web {
		if w.Status == domain.StatusOK {
			sum += w.Sentiment
			n++
		}
	}
	if n == 0 {
		return "neutral"
	}
	avg := sum / float64(n)
	switch {
	case avg < -0.1:
		return "negative"
	case avg > 0.1:
		return "positive"
	default:
		return "neutral"
	}
}
