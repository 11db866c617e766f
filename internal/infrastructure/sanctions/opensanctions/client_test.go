package opensanctions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, logging.NewNopLogger())
}

func person(name string) entity.Logical {
	return entity.Logical{Kind: entity.KindPerson, Name: name}
}

func TestScreen_ExactMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/default", r.URL.Path)
		assert.Equal(t, "Vladimir Petrov", r.URL.Query().Get("q"))
		assert.Equal(t, "true", r.URL.Query().Get("fuzzy"))
		assert.Equal(t, "ApiKey test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"results":[{
			"id":"Q1000",
			"datasets":["us_ofac_sdn"],
			"properties":{
				"name":["Vladimir Petrov"],
				"topics":["sanction","crime"],
				"country":["ru"]
			}
		}]}`))
	})

	res, err := client.Screen(context.Background(), person("Vladimir Petrov"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, res.Status)
	assert.True(t, res.Matched)
	assert.InDelta(t, 100.0, res.Confidence, 0.01)
	assert.InDelta(t, 100.0, res.Score, 0.01)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Q1000", res.Matches[0].EntityID)
	assert.Contains(t, res.Factors, "Subject to economic sanctions")
	assert.Contains(t, res.Factors, "Criminal activity reported")
	assert.Contains(t, res.Factors, "Listed on OFAC SDN")
}

func TestScreen_MatchWithoutTopicsKeepsBaseScore(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{
			"id":"Q2000",
			"properties":{"name":["ACME Trading Ltd"]}
		}]}`))
	})

	res, err := client.Screen(context.Background(), entity.Logical{Kind: entity.KindCompany, Name: "ACME Trading Ltd"})
	require.NoError(t, err)

	assert.True(t, res.Matched)
	assert.InDelta(t, 100.0, res.Confidence, 0.01)
	assert.InDelta(t, 90.0, res.Score, 0.01)
	assert.Empty(t, res.Factors)
}

func TestScreen_AliasCountsTowardsMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{
			"id":"Q3000",
			"properties":{"name":["Совкомбанк"],"alias":["Sovcombank"]}
		}]}`))
	})

	res, err := client.Screen(context.Background(), entity.Logical{Kind: entity.KindCompany, Name: "Sovcombank"})
	require.NoError(t, err)

	assert.True(t, res.Matched)
	assert.Equal(t, "Sovcombank", res.Matches[0].Name)
}

func TestScreen_BelowThresholdIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{
			"id":"Q4000",
			"properties":{"name":["Completely Different Name"]}
		}]}`))
	})

	res, err := client.Screen(context.Background(), person("Vladimir Petrov"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusEmpty, res.Status)
	assert.False(t, res.Matched)
	assert.Empty(t, res.Matches)
}

func TestScreen_NoResultsIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})

	res, err := client.Screen(context.Background(), person("Vladimir Petrov"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEmpty, res.Status)
}

func TestScreen_CapsMatchesAtConfigured(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"id":"Q1","properties":{"name":["Vladimir Petrov"]}},
			{"id":"Q2","properties":{"name":["Vladimir Petrov"]}},
			{"id":"Q3","properties":{"name":["Vladimir Petrov"]}}
		]}`))
	})
	client.config.MaxMatches = 2

	res, err := client.Screen(context.Background(), person("Vladimir Petrov"))
	require.NoError(t, err)
	assert.Len(t, res.Matches, 2)
}

func TestScreen_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errors.ErrorCode
	}{
		{"auth rejected", http.StatusForbidden, errors.ErrCodeSourceAuthFailed},
		{"rate limited", http.StatusTooManyRequests, errors.ErrCodeSourceRateLimited},
		{"server error", http.StatusInternalServerError, errors.ErrCodeSourceUnavailable},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.Screen(context.Background(), person("Vladimir Petrov"))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestScreen_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": not json`))
	})

	_, err := client.Screen(context.Background(), person("Vladimir Petrov"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSourceMalformed))
}

func TestScreen_EmptyNameRejected(t *testing.T) {
	client := NewClient(Config{}, nil)

	_, err := client.Screen(context.Background(), person("   "))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestScoreMatches_TopicBonuses(t *testing.T) {
	t.Parallel()

	// Dotted taxonomy topics pick up their parent bonus.
	score := scoreMatches([]domain.SanctionsMatch{
		{Confidence: 70, Topics: []string{"crime.terror"}},
	})
	assert.InDelta(t, 70*0.9+30, score, 0.01)

	// Multiple matches add the extra-match bonus, capped at 40.
	score = scoreMatches([]domain.SanctionsMatch{
		{Confidence: 60}, {Confidence: 55}, {Confidence: 50},
	})
	assert.InDelta(t, 60*0.9+40, score, 0.01)

	// The component never exceeds 100.
	score = scoreMatches([]domain.SanctionsMatch{
		{Confidence: 100, Topics: []string{"sanction", "terror", "weapon"}},
	})
	assert.InDelta(t, 100.0, score, 0.01)
}
