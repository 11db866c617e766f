package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario from the product requirements: a confirmed sanctions match at
// confidence 97 with no other sources must land at very_high.
func TestAggregate_ConfirmedSanctionsMatchDominates(t *testing.T) {
	t.Parallel()

	set := SourceSet{
		Sanctions: []SanctionsResult{{
			Status:     StatusOK,
			Matched:    true,
			Confidence: 97,
			Score:      55,
			Matches:    []SanctionsMatch{{Name: "Jane Critical", Confidence: 97}},
		}},
		AI:            NeutralAI(StatusSkipped),
		Relationships: NeutralRelationships(StatusSkipped),
	}

	res, err := Aggregate(set)
	require.NoError(t, err)

	assert.Equal(t, 80, res.Score)
	assert.Equal(t, LevelVeryHigh, res.Level)
	assert.InDelta(t, 80, res.Components.Sanctions, 1e-9)
	assert.InDelta(t, 1.0, res.Weights.Sanctions, 1e-9, "sole participating source carries full weight")

	require.NotEmpty(t, res.Factors)
	assert.Equal(t, SourceSanctions, res.Factors[0].Source)
	assert.Equal(t, SeverityHigh, res.Factors[0].Severity)
}

func TestAggregate_CleanEntityScoresLowWithSyntheticFactor(t *testing.T) {
	t.Parallel()

	set := SourceSet{
		Sanctions:     []SanctionsResult{NeutralSanctions(StatusEmpty)},
		Web:           []WebIntelResult{NeutralWeb(StatusEmpty)},
		AI:            AISummaryResult{Status: StatusEmpty},
		Relationships: RelationshipResult{Status: StatusOK},
	}

	res, err := Aggregate(set)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, LevelVeryLow, res.Level)
	require.Len(t, res.Factors, 1)
	assert.Equal(t, "No significant risk indicators found", res.Factors[0].Description)
	assert.Equal(t, SeverityLow, res.Factors[0].Severity)
}

func TestAggregate_NoSourcesRanAtAll(t *testing.T) {
	t.Parallel()

	set := SourceSet{
		AI:            NeutralAI(StatusSkipped),
		Relationships: NeutralRelationships(StatusSkipped),
	}

	res, err := Aggregate(set)
	require.NoError(t, err, "an empty source set is not an aggregation failure")
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, LevelVeryLow, res.Level)
	require.Len(t, res.Factors, 1)
	assert.Equal(t, "No significant risk indicators found", res.Factors[0].Description)
}

func TestAggregate_DegradedSourcesAreExcludedNotFatal(t *testing.T) {
	t.Parallel()

	set := SourceSet{
		Sanctions: []SanctionsResult{{
			Status: StatusOK, Matched: true, Confidence: 96, Score: 70,
			Matches: []SanctionsMatch{{Name: "Acme Holdings", Confidence: 96}},
		}},
		Web:           []WebIntelResult{NeutralWeb(StatusTimedOut)},
		AI:            NeutralAI(StatusUnavailable),
		Relationships: RelationshipResult{Status: StatusOK, Relationships: []RelatedEntity{{Name: "x"}}},
	}

	res, err := Aggregate(set)
	require.NoError(t, err)

	// Sanctions floored to 80 → critical tier restricted to {sanctions, relationships}.
	// 0.80/0.82 * 80 + 0.02/0.82 * 5 = 78.05 + 0.12 → 78.
	assert.Equal(t, 78, res.Score)
	assert.Equal(t, LevelVeryHigh, res.Level)
	assert.ElementsMatch(t, []SourceName{SourceWeb, SourceAI}, res.Degraded)

	for _, f := range res.Factors {
		assert.NotEqual(t, SourceWeb, f.Source, "degraded web source must not contribute factors")
		assert.NotEqual(t, SourceAI, f.Source)
	}
}

func TestAggregate_BaselineTierBlendsAllSources(t *testing.T) {
	t.Parallel()

	set := SourceSet{
		Sanctions: []SanctionsResult{{Status: StatusOK, Score: 20}},
		Web: []WebIntelResult{{
			Status:     StatusOK,
			Categories: []string{"investigation", "regulatory"},
			Indicators: []string{"Investigation indicators found", "Regulatory indicators found"},
		}},
		AI: AISummaryResult{Status: StatusOK, Score: 40, Confidence: 0.6},
		Relationships: RelationshipResult{Status: StatusOK, Relationships: []RelatedEntity{
			{Name: "a"}, {Name: "b"},
		}},
	}

	res, err := Aggregate(set)
	require.NoError(t, err)

	// All sources participated: 20*0.4 + 30*0.3 + 40*0.2 + 10*0.1 = 26.
	assert.Equal(t, 26, res.Score)
	assert.Equal(t, LevelLow, res.Level)
	assert.Empty(t, res.Degraded)
}

func TestAggregate_MonotoneInSanctionsConfidence(t *testing.T) {
	t.Parallel()

	scoreAt := func(conf float64) int {
		set := SourceSet{
			Sanctions: []SanctionsResult{{Status: StatusOK, Matched: true, Confidence: conf, Score: 50}},
			Web:       []WebIntelResult{{Status: StatusOK, Categories: []string{"criminal"}, TrustedHits: 1}},
			AI:        AISummaryResult{Status: StatusOK, Score: 30, Confidence: 0.5},
			Relationships: RelationshipResult{Status: StatusOK, Relationships: []RelatedEntity{
				{Name: "a"},
			}},
		}
		res, err := Aggregate(set)
		require.NoError(t, err)
		return res.Score
	}

	assert.GreaterOrEqual(t, scoreAt(96), scoreAt(70),
		"raising match confidence must never lower the final score")
}

func TestLevelForScore_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score int
		want  RiskLevel
	}{
		{0, LevelVeryLow},
		{24, LevelVeryLow},
		{25, LevelLow},
		{39, LevelLow},
		{40, LevelMedium},
		{59, LevelMedium},
		{60, LevelHigh},
		{74, LevelHigh},
		{75, LevelVeryHigh},
		{100, LevelVeryHigh},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelForScore(tc.score), "score %d", tc.score)
	}
}
