package serper

import (
	"context"
	"encoding/json"
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
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, nil, logging.NewNopLogger())
}

func person(name string) entity.Logical {
	return entity.Logical{Kind: entity.KindPerson, Name: name}
}

func TestGather_ClassifiesFindings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, `"Vladimir Petrov" sanctions risk compliance investigation`, req.Query)

		w.Write([]byte(`{"organic":[
			{"title":"Petrov charged with fraud","snippet":"under investigation for money laundering","link":"https://www.reuters.com/article/1"},
			{"title":"Petrov company expands","snippet":"quarterly report","link":"https://example.com/blog"}
		]}`))
	})

	res, err := client.Gather(context.Background(), person("Vladimir Petrov"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, res.Status)
	require.Len(t, res.Findings, 2)
	assert.Equal(t, "reuters.com", res.Findings[0].Source)
	assert.True(t, res.Findings[0].Trusted)
	assert.False(t, res.Findings[1].Trusted)

	assert.ElementsMatch(t, []string{"criminal", "investigation", "money_laundering"}, res.Categories)
	assert.Contains(t, res.Indicators, "Money Laundering indicators found")
	assert.Equal(t, 1, res.TrustedHits)
	assert.Equal(t, 1, res.HighRiskHits, "only the first hit carries high-risk vocabulary")
	assert.Less(t, res.Sentiment, 0.0, "compliance coverage skews negative")
}

func TestGather_NoHitsIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic":[]}`))
	})

	res, err := client.Gather(context.Background(), person("Vladimir Petrov"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEmpty, res.Status)
	assert.Empty(t, res.Findings)
}

func TestGather_TruncatesToMaxResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		items := make([]organicResult, 8)
		for i := range items {
			items[i] = organicResult{Title: "hit", Link: "https://example.com"}
		}
		json.NewEncoder(w).Encode(searchResponse{Organic: items})
	})
	client.config.MaxResults = 3

	res, err := client.Gather(context.Background(), person("Vladimir Petrov"))
	require.NoError(t, err)
	assert.Len(t, res.Findings, 3)
}

func TestGather_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errors.ErrorCode
	}{
		{"auth rejected", http.StatusUnauthorized, errors.ErrCodeSourceAuthFailed},
		{"rate limited", http.StatusTooManyRequests, errors.ErrCodeSourceRateLimited},
		{"server error", http.StatusBadGateway, errors.ErrCodeSourceUnavailable},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.Gather(context.Background(), person("Vladimir Petrov"))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestGather_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic": oops`))
	})

	_, err := client.Gather(context.Background(), person("Vladimir Petrov"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSourceMalformed))
}

func TestGather_EmptyNameRejected(t *testing.T) {
	client := NewClient(Config{}, nil, nil)

	_, err := client.Gather(context.Background(), person(""))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}
