package assessment

import "github.com/turtacn/risknet/pkg/errors"

// Weights assigns each source its share of the final score. A valid set of
// weights sums to exactly 1 after Normalize.
type Weights struct {
	Sanctions     float64 `json:"sanctions"`
	Web           float64 `json:"web_intelligence"`
	AI            float64 `json:"ai_analysis"`
	Relationships float64 `json:"relationships"`
}

// Sum returns the raw total of the four weights.
func (w Weights) Sum() float64 {
	return w.Sanctions + w.Web + w.AI + w.Relationships
}

// Normalize rescales the weights to sum to 1. A non-positive sum cannot be
// rescaled and is reported as an aggregation failure, the one error class
// that aborts an assessment.
func (w Weights) Normalize() (Weights, error) {
	sum := w.Sum()
	if sum <= 0 {
		return Weights{}, errors.NewAggregationFailure("weight sum is not positive")
	}
	return Weights{
		Sanctions:     w.Sanctions / sum,
		Web:           w.Web / sum,
		AI:            w.AI / sum,
		Relationships: w.Relationships / sum,
	}, nil
}

// Restrict zeroes the weights of sources that did not participate, so that
// a later Normalize redistributes their share across the sources that did.
// An assessment with only a sanctions answer is scored by sanctions alone at
// full weight, not diluted by sources that never ran.
func (w Weights) Restrict(m SourceMask) Weights {
	if !m.Sanctions {
		w.Sanctions = 0
	}
	if !m.Web {
		w.Web = 0
	}
	if !m.AI {
		w.AI = 0
	}
	if !m.Relationships {
		w.Relationships = 0
	}
	return w
}

// Weight tiers. A confirmed sanctions signal dominates everything else;
// the thresholds are keyed on the post-floor sanctions component.
var (
	weightsSanctionsCritical = Weights{Sanctions: 0.80, Web: 0.15, AI: 0.03, Relationships: 0.02}
	weightsSanctionsElevated = Weights{Sanctions: 0.70, Web: 0.20, AI: 0.07, Relationships: 0.03}
	weightsBaseline          = Weights{Sanctions: 0.40, Web: 0.30, AI: 0.20, Relationships: 0.10}
)

const (
	weightTierCriticalThreshold = 80.0
	weightTierElevatedThreshold = 60.0
)

// SelectWeights picks the weight tier for the given post-floor sanctions
// component score.
func SelectWeights(sanctionsComponent float64) Weights {
	switch {
	case sanctionsComponent >= weightTierCriticalThreshold:
		return weightsSanctionsCritical
	case sanctionsComponent >= weightTierElevatedThreshold:
		return weightsSanctionsElevated
	default:
		return weightsBaseline
	}
}
