package assessment

import (
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
)

const (
	recTypeHighRisk     = "high_risk"
	recTypeMediumRisk   = "medium_risk"
	recTypeRelationship = "relationship_analysis"
	recTypeDirector     = "director_analysis"

	recPriorityHigh   = "high"
	recPriorityMedium = "medium"
)

// priority escalation threshold for the input-type recommendations.
const recEscalationScore = 70

// buildRecommendations derives the follow-up actions attached to a result.
// Risk-level recommendations come first, then input-type ones; the latter
// inherit high priority once the score reaches the escalation threshold.
func buildRecommendations(score int, level domain.RiskLevel, inputType entity.InputType) []Recommendation {
	var recs []Recommendation

	switch {
	case level == domain.LevelVeryHigh || level == domain.LevelHigh || score >= recEscalationScore:
		recs = append(recs, Recommendation{
			Type:     recTypeHighRisk,
			Priority: recPriorityHigh,
			Message:  "Immediate action required due to high risk level",
			Suggestions: []string{
				"Conduct enhanced due diligence",
				"Review all associated entities",
				"Consider additional verification steps",
			},
		})
	case level == domain.LevelMedium || score >= 40:
		recs = append(recs, Recommendation{
			Type:     recTypeMediumRisk,
			Priority: recPriorityMedium,
			Message:  "Standard due diligence recommended",
			Suggestions: []string{
				"Review entity relationships",
				"Monitor for changes in risk factors",
				"Consider periodic re-assessment",
			},
		})
	}

	priority := recPriorityMedium
	if score >= recEscalationScore {
		priority = recPriorityHigh
	}

	if inputType == entity.InputTypeBoth {
		recs = append(recs, Recommendation{
			Type:     recTypeRelationship,
			Priority: priority,
			Message:  "Analyze person-company relationship",
			Suggestions: []string{
				"Review historical relationship data",
				"Check for other associated entities",
				"Monitor relationship changes",
			},
		})
	}

	if inputType == entity.InputTypeCompany || inputType == entity.InputTypeBoth {
		recs = append(recs, Recommendation{
			Type:     recTypeDirector,
			Priority: priority,
			Message:  "Review director information",
			Suggestions: []string{
				"Verify director appointments",
				"Check director history",
				"Monitor director changes",
			},
		})
	}

	return recs
}
