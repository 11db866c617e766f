package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
)

func TestBuildRecommendations(t *testing.T) {
	t.Parallel()

	recTypes := func(recs []Recommendation) []string {
		out := make([]string, len(recs))
		for i, r := range recs {
			out[i] = r.Type
		}
		return out
	}

	tests := []struct {
		name      string
		score     int
		level     domain.RiskLevel
		inputType entity.InputType
		want      []string
	}{
		{
			name:  "low risk person gets nothing",
			score: 10, level: domain.LevelVeryLow, inputType: entity.InputTypePerson,
			want: nil,
		},
		{
			name:  "medium risk person",
			score: 45, level: domain.LevelMedium, inputType: entity.InputTypePerson,
			want: []string{"medium_risk"},
		},
		{
			name:  "high risk person",
			score: 72, level: domain.LevelHigh, inputType: entity.InputTypePerson,
			want: []string{"high_risk"},
		},
		{
			name:  "low risk company still gets director review",
			score: 15, level: domain.LevelVeryLow, inputType: entity.InputTypeCompany,
			want: []string{"director_analysis"},
		},
		{
			name:  "high risk joint input gets everything",
			score: 85, level: domain.LevelVeryHigh, inputType: entity.InputTypeBoth,
			want: []string{"high_risk", "relationship_analysis", "director_analysis"},
		},
		{
			name:  "score threshold escalates without matching level",
			score: 70, level: domain.LevelMedium, inputType: entity.InputTypePerson,
			want: []string{"high_risk"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := buildRecommendations(tt.score, tt.level, tt.inputType)
			assert.Equal(t, tt.want, recTypes(got))
		})
	}
}

func TestBuildRecommendations_PriorityEscalation(t *testing.T) {
	t.Parallel()

	high := buildRecommendations(80, domain.LevelVeryHigh, entity.InputTypeBoth)
	for _, r := range high {
		assert.Equal(t, "high", r.Priority, r.Type)
	}

	moderate := buildRecommendations(45, domain.LevelMedium, entity.InputTypeBoth)
	for _, r := range moderate {
		assert.Equal(t, "medium", r.Priority, r.Type)
	}
}
