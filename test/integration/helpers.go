// Package integration exercises the assessment pipeline end to end over
// real HTTP transports: the external sources are httptest stand-ins and
// the cache is a miniredis instance, so the suite runs without network
// access or external services.
package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/ai"
	"github.com/turtacn/risknet/internal/infrastructure/database/redis"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/sanctions/opensanctions"
	"github.com/turtacn/risknet/internal/infrastructure/websearch/serper"
)

// sanctionsHit is one canned watchlist entry served by the stub.
type sanctionsHit struct {
	Name   string
	Topics []string
}

// newSanctionsServer serves the watchlist search API. Queries matching a
// key in hits return the canned entries; everything else matches nothing.
func newSanctionsServer(t *testing.T, hits map[string][]sanctionsHit) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		type properties struct {
			Name   []string `json:"name"`
			Topics []string `json:"topics"`
		}
		type result struct {
			ID         string     `json:"id"`
			Datasets   []string   `json:"datasets"`
			Properties properties `json:"properties"`
		}
		var results []result
		for _, h := range hits[q] {
			results = append(results, result{
				ID:         "ent-" + h.Name,
				Datasets:   []string{"test_watchlist"},
				Properties: properties{Name: []string{h.Name}, Topics: h.Topics},
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// webHit is one canned search result served by the web stub.
type webHit struct {
	Title   string
	Snippet string
	URL     string
}

// newWebServer serves the web-search API with the same canned hits for
// every query.
func newWebServer(t *testing.T, hits []webHit) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		type organic struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		}
		var results []organic
		for _, h := range hits {
			results = append(results, organic{Title: h.Title, Snippet: h.Snippet, Link: h.URL})
		}
		json.NewEncoder(w).Encode(map[string]any{"organic": results})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newFailingServer always answers with the given status.
func newFailingServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newRedisCache backs an AssessmentCache with a fresh miniredis.
func newRedisCache(t *testing.T) *redis.AssessmentCache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(&redis.Config{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return redis.NewAssessmentCache(client, logging.NewNopLogger())
}

// buildService wires a coordinator whose sources point at the given stub
// servers. Empty URLs leave the source unconfigured.
func buildService(t *testing.T, sanctionsURL, webURL string, cache appassessment.ResultCache) appassessment.Service {
	t.Helper()

	deps := appassessment.Deps{
		Cache:      cache,
		Summarizer: ai.NewChain(nil, logging.NewNopLogger()),
		Logger:     logging.NewNopLogger(),
	}
	if sanctionsURL != "" {
		deps.Sanctions = opensanctions.NewClient(opensanctions.Config{
			BaseURL: sanctionsURL,
			APIKey:  "test-key",
		}, logging.NewNopLogger())
	}
	if webURL != "" {
		deps.Web = serper.NewClient(serper.Config{
			BaseURL: webURL,
			APIKey:  "test-key",
		}, nil, logging.NewNopLogger())
	}
	return appassessment.NewService(appassessment.Config{FastMode: true}, deps)
}
