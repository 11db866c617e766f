package assessment

// Score normalization: every component is mapped onto [0,100] before
// weighting. Raising is the only direction a rule may move a score in; the
// sanctions floors never lower a provider-reported value.

const (
	// Sanctions confidence floors. A confirmed match at or above the
	// confidence threshold forces the component to at least the floor.
	sanctionsFloorHighConfidence = 95.0
	sanctionsFloorHigh           = 80.0
	sanctionsFloorMedConfidence  = 85.0
	sanctionsFloorMed            = 70.0

	// Web component build-up, capped at 100.
	webIndicatorWeight = 15.0
	webTrustedBonus    = 10.0
	webHighRiskBonus   = 20.0

	// Relationship component: flat increment per discovered edge.
	relationshipIncrement = 5.0
)

// Components is the normalized per-source score breakdown, all on [0,100].
type Components struct {
	Sanctions     float64 `json:"sanctions"`
	Web           float64 `json:"web_intelligence"`
	AI            float64 `json:"ai_analysis"`
	Relationships float64 `json:"relationships"`
}

// clampScore bounds v to [0,100].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NormalizeSanctions reduces the per-entity sanctions results to one
// component score. The base is the worst (highest) provider score across
// entities; the confidence floors then raise it when a sufficiently
// confident match exists anywhere in the request.
func NormalizeSanctions(results []SanctionsResult) float64 {
	var score float64
	for _, r := range results {
		if s := clampScore(r.Score); s > score {
			score = s
		}
	}
	for _, r := range results {
		if !r.Matched {
			continue
		}
		switch {
		case r.Confidence >= sanctionsFloorHighConfidence:
			if score < sanctionsFloorHigh {
				score = sanctionsFloorHigh
			}
		case r.Confidence >= sanctionsFloorMedConfidence:
			if score < sanctionsFloorMed {
				score = sanctionsFloorMed
			}
		}
	}
	return score
}

// NormalizeWeb reduces the per-entity web results to one component score.
// Per entity: distinct indicator categories x 15, trusted-source hits x 10,
// high-risk keyword hits x 20, capped at 100. The request takes the worst
// entity.
func NormalizeWeb(results []WebIntelResult) float64 {
	var score float64
	for _, r := range results {
		s := float64(len(r.Categories))*webIndicatorWeight +
			float64(r.TrustedHits)*webTrustedBonus +
			float64(r.HighRiskHits)*webHighRiskBonus
		if s = clampScore(s); s > score {
			score = s
		}
	}
	return score
}

// NormalizeAI clamps the summarizer-reported score onto [0,100].
func NormalizeAI(r AISummaryResult) float64 {
	return clampScore(r.Score)
}

// NormalizeRelationships converts the relationship count into a component
// score: a flat increment per edge, capped at 100.
func NormalizeRelationships(r RelationshipResult) float64 {
	return clampScore(float64(r.Count()) * relationshipIncrement)
}

// NormalizeAll computes the full component breakdown for a source set.
func NormalizeAll(set SourceSet) Components {
	return Components{
		Sanctions:     NormalizeSanctions(set.Sanctions),
		Web:           NormalizeWeb(set.Web),
		AI:            NormalizeAI(set.AI),
		Relationships: NormalizeRelationships(set.Relationships),
	}
}
