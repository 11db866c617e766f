package assessment

import "math"

// Result is the scored outcome of an assessment before the application layer
// wraps it with entity data, recommendations and timing.
type Result struct {
	Score      int          `json:"risk_score"`
	Level      RiskLevel    `json:"risk_level"`
	Components Components   `json:"component_scores"`
	Weights    Weights      `json:"weights"`
	Factors    []RiskFactor `json:"risk_factors"`
	Degraded   []SourceName `json:"degraded_sources,omitempty"`
}

// Aggregate turns a collected source set into the final score, level and
// factor list:
//
//  1. normalize every component onto [0,100],
//  2. select the weight tier from the post-floor sanctions component,
//  3. drop the weights of sources that never participated and re-normalize
//     the remainder to sum to 1,
//  4. round the weighted sum and clamp it to [0,100].
//
// An assessment where no source participated at all scores 0 / very_low
// with the synthetic all-clear factor. The only error Aggregate can return
// is an aggregation failure from an invalid weight set; degraded sources
// have already been absorbed into neutral results by the time the set
// reaches this function.
func Aggregate(set SourceSet) (*Result, error) {
	components := NormalizeAll(set)

	mask := set.ActiveMask()
	if mask.None() {
		return &Result{
			Score:      0,
			Level:      LevelForScore(0),
			Components: components,
			Factors:    CompileFactors(set),
			Degraded:   set.DegradedSources(),
		}, nil
	}

	weights, err := SelectWeights(components.Sanctions).Restrict(mask).Normalize()
	if err != nil {
		return nil, err
	}

	weighted := components.Sanctions*weights.Sanctions +
		components.Web*weights.Web +
		components.AI*weights.AI +
		components.Relationships*weights.Relationships

	score := int(math.Round(weighted))
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return &Result{
		Score:      score,
		Level:      LevelForScore(score),
		Components: components,
		Weights:    weights,
		Factors:    CompileFactors(set),
		Degraded:   set.DegradedSources(),
	}, nil
}
