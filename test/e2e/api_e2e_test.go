package e2e

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/risknet/pkg/client"
	"github.com/turtacn/risknet/pkg/types/risk"
)

func TestE2E_AssessSanctionedPerson(t *testing.T) {
	sdk, _ := startStack(t, map[string][]string{
		"Viktor Petrov": {"sanction"},
	})

	res, err := sdk.AssessPerson(context.Background(), risk.Person{Name: "Viktor Petrov", Country: "RU"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.AssessmentID)
	assert.GreaterOrEqual(t, res.RiskScore, 40)
	assert.Contains(t, []string{"medium", "high", "very_high"}, res.RiskLevel)
	require.Len(t, res.Sanctions, 1)
	assert.True(t, res.Sanctions[0].Matched)
	assert.NotEmpty(t, res.AISummary.Summary)
	assert.False(t, res.Cached)
}

func TestE2E_ValidationErrorSurfacesThroughSDK(t *testing.T) {
	sdk, _ := startStack(t, nil)

	_, err := sdk.Assess(context.Background(), risk.AssessmentRequest{Type: risk.InputTypePerson})
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsValidation())
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestE2E_HistoryAndStatisticsReflectTraffic(t *testing.T) {
	sdk, history := startStack(t, nil)
	ctx := context.Background()

	for _, name := range []string{"Jane Doe", "John Roe"} {
		_, err := sdk.AssessPerson(ctx, risk.Person{Name: name})
		require.NoError(t, err)
	}

	n, err := history.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	recent, err := sdk.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.NotEmpty(t, recent[0].AssessmentID)

	stats, err := sdk.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Service.TotalRequests)
	assert.Zero(t, stats.Service.FailedRequests)
}

func TestE2E_FastModeToggleRoundTrip(t *testing.T) {
	sdk, _ := startStack(t, nil)
	ctx := context.Background()

	on, err := sdk.SetFastMode(ctx, false)
	require.NoError(t, err)
	assert.False(t, on)

	on, err = sdk.SetFastMode(ctx, true)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestE2E_HealthEndpoint(t *testing.T) {
	sdk, _ := startStack(t, nil)
	assert.NoError(t, sdk.Health(context.Background()))
}
