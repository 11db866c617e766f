// Package e2e drives the full HTTP stack through the Go SDK: router,
// middleware, coordinator, and stubbed external sources behind real
// httptest transports.
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/ai"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/sanctions/opensanctions"
	httpserver "github.com/turtacn/risknet/internal/interfaces/http"
	"github.com/turtacn/risknet/internal/interfaces/http/handlers"
	"github.com/turtacn/risknet/pkg/client"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryHistory is an in-process HistoryStore for the recent endpoint.
type memoryHistory struct {
	mu   sync.Mutex
	rows []appassessment.HistoryRecord
}

func (h *memoryHistory) Save(_ context.Context, rec appassessment.HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = append(h.rows, rec)
	return nil
}

func (h *memoryHistory) Recent(_ context.Context, limit int) ([]appassessment.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]appassessment.HistoryRecord, len(h.rows))
	copy(out, h.rows)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (h *memoryHistory) Count(_ context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(len(h.rows)), nil
}

// newSanctionsStub matches any query listed in sanctioned and returns a
// single confident watchlist entry for it.
func newSanctionsStub(t *testing.T, sanctioned map[string][]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("q")
		results := []map[string]any{}
		if topics, ok := sanctioned[name]; ok {
			results = append(results, map[string]any{
				"id":       "ent-1",
				"datasets": []string{"test_watchlist"},
				"properties": map[string]any{
					"name":   []string{name},
					"topics": topics,
				},
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// startStack brings up the whole API over httptest and returns an SDK
// client pointed at it.
func startStack(t *testing.T, sanctioned map[string][]string) (*client.Client, *memoryHistory) {
	t.Helper()

	history := &memoryHistory{}
	sanctionsStub := newSanctionsStub(t, sanctioned)

	svc := appassessment.NewService(appassessment.Config{FastMode: true}, appassessment.Deps{
		Sanctions: opensanctions.NewClient(opensanctions.Config{
			BaseURL: sanctionsStub.URL,
			APIKey:  "test-key",
		}, logging.NewNopLogger()),
		Summarizer: ai.NewChain(nil, logging.NewNopLogger()),
		History:    history,
		Logger:     logging.NewNopLogger(),
	})

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Assessment: handlers.NewAssessmentHandler(svc, logging.NewNopLogger()),
		Health:     handlers.NewHealthHandler("e2e"),
		Logger:     logging.NewNopLogger(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	sdk, err := client.NewClient(srv.URL)
	require.NoError(t, err)
	return sdk, history
}
