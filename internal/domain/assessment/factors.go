package assessment

import "fmt"

// Severity grades a risk factor.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskFactor is one explainable reason behind a score. Confidence lives on
// [0,1] regardless of the source's native scale.
type RiskFactor struct {
	Source      SourceName `json:"source"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"`
	Severity    Severity   `json:"severity"`
}

const (
	factorTypeSanctionsMatch = "sanctions_match"
	factorTypeWebIndicator   = "web_indicator"
	factorTypeAIFinding      = "ai_finding"
	factorTypeComplexGraph   = "complex_relationships"
	factorTypeNoRisk         = "no_risk_indicators"
)

// complexGraphThreshold is the relationship count above which the network
// itself becomes a factor.
const complexGraphThreshold = 2

// CompileFactors flattens a source set into the explainable factor list.
// Sources are visited in canonical order (sanctions, web, AI,
// relationships); duplicate (source, description) pairs collapse into one
// factor keeping the highest confidence; an otherwise empty list gets the
// synthetic all-clear factor so callers never see a scored assessment with
// no explanation at all.
func CompileFactors(set SourceSet) []RiskFactor {
	var factors []RiskFactor

	for _, r := range set.Sanctions {
		for _, m := range r.Matches {
			factors = append(factors, RiskFactor{
				Source:      SourceSanctions,
				Type:        factorTypeSanctionsMatch,
				Description: fmt.Sprintf("Sanctions match: %s", m.Name),
				Confidence:  m.Confidence / 100,
				Severity:    SeverityHigh,
			})
		}
	}

	for _, r := range set.Web {
		for _, ind := range r.Indicators {
			factors = append(factors, RiskFactor{
				Source:      SourceWeb,
				Type:        factorTypeWebIndicator,
				Description: ind,
				Confidence:  0.7,
				Severity:    SeverityMedium,
			})
		}
	}

	for _, finding := range set.AI.KeyFindings {
		factors = append(factors, RiskFactor{
			Source:      SourceAI,
			Type:        factorTypeAIFinding,
			Description: finding,
			Confidence:  set.AI.Confidence,
			Severity:    SeverityMedium,
		})
	}

	if n := set.Relationships.Count(); n > complexGraphThreshold {
		factors = append(factors, RiskFactor{
			Source:      SourceRelationships,
			Type:        factorTypeComplexGraph,
			Description: fmt.Sprintf("Multiple entity relationships detected (%d)", n),
			Confidence:  0.8,
			Severity:    SeverityMedium,
		})
	}

	factors = dedupeFactors(factors)

	if len(factors) == 0 {
		factors = append(factors, RiskFactor{
			Source:      SourceName("system"),
			Type:        factorTypeNoRisk,
			Description: "No significant risk indicators found",
			Confidence:  1.0,
			Severity:    SeverityLow,
		})
	}
	return factors
}

// dedupeFactors collapses factors sharing (source, description), keeping the
// maximum confidence and the first occurrence's position.
func dedupeFactors(in []RiskFactor) []RiskFactor {
	type key struct {
		source SourceName
		desc   string
	}
	index := make(map[key]int, len(in))
	out := make([]RiskFactor, 0, len(in))
	for _, f := range in {
		k := key{f.Source, f.Description}
		if i, seen := index[k]; seen {
			if f.Confidence > out[i].Confidence {
				out[i].Confidence = f.Confidence
			}
			continue
		}
		index[k] = len(out)
		out = append(out, f)
	}
	return out
}
