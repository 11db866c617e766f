package assessment

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/domain/relationship"
	"github.com/turtacn/risknet/pkg/errors"
)

type stubSanctions struct {
	fn func(ctx context.Context, e entity.Logical) (domain.SanctionsResult, error)
}

func (s *stubSanctions) Screen(ctx context.Context, e entity.Logical) (domain.SanctionsResult, error) {
	return s.fn(ctx, e)
}

type stubWeb struct {
	fn func(ctx context.Context, e entity.Logical) (domain.WebIntelResult, error)
}

func (s *stubWeb) Gather(ctx context.Context, e entity.Logical) (domain.WebIntelResult, error) {
	return s.fn(ctx, e)
}

type stubSummarizer struct {
	fn func(ctx context.Context, req SummaryRequest) (domain.AISummaryResult, error)
}

func (s *stubSummarizer) Summarize(ctx context.Context, req SummaryRequest) (domain.AISummaryResult, error) {
	return s.fn(ctx, req)
}

type stubGraph struct {
	mu      sync.Mutex
	edges   map[string][]relationship.Edge
	linked  []relationship.Edge
	statErr error
}

func (g *stubGraph) UpsertEntity(_ context.Context, e entity.Logical, _ domain.SanctionsResult, _ domain.WebIntelResult) (string, error) {
	return relationship.EntityID(e), nil
}

func (g *stubGraph) LinkEntities(_ context.Context, fromID, toID string, typ relationship.Type) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.linked = append(g.linked, relationship.Edge{Type: typ, FromID: fromID, ToID: toID})
	return nil
}

func (g *stubGraph) FindRelated(_ context.Context, entityID string) ([]relationship.Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.edges[entityID], nil
}

func (g *stubGraph) Stats(_ context.Context) (relationship.GraphStats, error) {
	if g.statErr != nil {
		return relationship.GraphStats{}, g.statErr
	}
	return relationship.GraphStats{Persons: 2, Companies: 1, Relationships: 3}, nil
}

func (g *stubGraph) Ping(_ context.Context) error { return nil }

type memCache struct {
	mu    sync.Mutex
	store map[string]*Result
	err   error
}

func newMemCache() *memCache { return &memCache{store: make(map[string]*Result)} }

func (c *memCache) Get(_ context.Context, fingerprint string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.store[fingerprint], nil
}

func (c *memCache) Set(_ context.Context, fingerprint string, res *Result, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.store[fingerprint] = res
	return nil
}

type memHistory struct {
	mu   sync.Mutex
	rows []HistoryRecord
	err  error
}

func (h *memHistory) Save(_ context.Context, rec HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.rows = append(h.rows, rec)
	return nil
}

func (h *memHistory) Recent(_ context.Context, limit int) ([]HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit > len(h.rows) {
		limit = len(h.rows)
	}
	out := make([]HistoryRecord, limit)
	for i := 0; i < limit; i++ {
		out[i] = h.rows[len(h.rows)-1-i]
	}
	return out, nil
}

func (h *memHistory) Count(_ context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(len(h.rows)), nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []CompletedEvent
	err    error
}

func (p *stubPublisher) PublishCompleted(_ context.Context, ev CompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

type stubArchiver struct {
	mu       sync.Mutex
	archived []*Result
	err      error
}

func (a *stubArchiver) Archive(_ context.Context, res *Result) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.archived = append(a.archived, res)
	return nil
}

func personInput(name string) entity.Input {
	return entity.Input{
		Type:   entity.InputTypePerson,
		Person: &entity.Person{Name: name, Country: "GB"},
	}
}

func cleanSanctions() *stubSanctions {
	return &stubSanctions{fn: func(_ context.Context, _ entity.Logical) (domain.SanctionsResult, error) {
		return domain.SanctionsResult{Status: domain.StatusEmpty}, nil
	}}
}

func quietWeb() *stubWeb {
	return &stubWeb{fn: func(_ context.Context, _ entity.Logical) (domain.WebIntelResult, error) {
		return domain.WebIntelResult{Status: domain.StatusEmpty}, nil
	}}
}

func TestAssess_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{}, Deps{})

	_, err := svc.Assess(context.Background(), entity.Input{Type: entity.InputTypePerson})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestAssess_NoSourcesConfigured(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{}, Deps{})

	res, err := svc.Assess(context.Background(), personInput("Alice Example"))
	require.NoError(t, err)

	assert.Equal(t, 0, res.RiskScore)
	assert.Equal(t, domain.LevelVeryLow, res.RiskLevel)
	require.Len(t, res.RiskFactors, 1)
	assert.Equal(t, "No significant risk indicators found", res.RiskFactors[0].Description)
	assert.Empty(t, res.DegradedSources)
	assert.NotEmpty(t, res.AssessmentID)
	assert.NotEmpty(t, res.Fingerprint)
}

func TestAssess_SanctionedPersonScoresCritical(t *testing.T) {
	t.Parallel()

	sanctions := &stubSanctions{fn: func(_ context.Context, e entity.Logical) (domain.SanctionsResult, error) {
		return domain.SanctionsResult{
			Status:     domain.StatusOK,
			Matched:    true,
			Confidence: 97,
			Score:      55,
			Matches: []domain.SanctionsMatch{
				{Name: e.Name, Confidence: 97, Topics: []string{"sanction"}},
			},
		}, nil
	}}

	svc := NewService(Config{FastMode: true}, Deps{Sanctions: sanctions})

	res, err := svc.Assess(context.Background(), personInput("Jane Critical"))
	require.NoError(t, err)

	// Confidence 97 floors the component at 80; with every other source
	// skipped the sanctions weight renormalizes to 1.
	assert.Equal(t, float64(80), res.ComponentScores.Sanctions)
	assert.Equal(t, float64(1), res.Weights.Sanctions)
	assert.Equal(t, 80, res.RiskScore)
	assert.Equal(t, domain.LevelVeryHigh, res.RiskLevel)

	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, "high_risk", res.Recommendations[0].Type)
	assert.Equal(t, "high", res.Recommendations[0].Priority)
}

func TestAssess_CacheHitReplaysResult(t *testing.T) {
	t.Parallel()

	cache := newMemCache()
	stats := NewStatsCollector()
	svc := NewService(Config{}, Deps{
		Sanctions: cleanSanctions(),
		Web:       quietWeb(),
		Cache:     cache,
		Stats:     stats,
	})

	first, err := svc.Assess(context.Background(), personInput("Bob Repeat"))
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Assess(context.Background(), personInput("bob  repeat"))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.AssessmentID, second.AssessmentID)
	assert.Equal(t, first.RiskScore, second.RiskScore)

	snap := stats.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.CacheHits)
}

func TestAssess_CacheErrorsAreMisses(t *testing.T) {
	t.Parallel()

	cache := newMemCache()
	cache.err = errors.New(errors.ErrCodeCacheError, "redis down")

	svc := NewService(Config{}, Deps{
		Sanctions: cleanSanctions(),
		Cache:     cache,
	})

	res, err := svc.Assess(context.Background(), personInput("Carol Unlucky"))
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestAssess_DegradedSourceIsAbsorbed(t *testing.T) {
	t.Parallel()

	web := &stubWeb{fn: func(_ context.Context, e entity.Logical) (domain.WebIntelResult, error) {
		return domain.WebIntelResult{}, errors.NewSourceTimeout("serper", context.DeadlineExceeded)
	}}

	svc := NewService(Config{}, Deps{
		Sanctions: cleanSanctions(),
		Web:       web,
	})

	res, err := svc.Assess(context.Background(), personInput("Dave Flaky"))
	require.NoError(t, err)

	require.Len(t, res.Web, 1)
	assert.Equal(t, domain.StatusTimedOut, res.Web[0].Status)
	assert.Equal(t, []domain.SourceName{domain.SourceWeb}, res.DegradedSources)
	// The timed-out source carries no weight; sanctions alone decides.
	assert.Equal(t, float64(1), res.Weights.Sanctions)
	assert.Equal(t, float64(0), res.Weights.Web)
}

func TestAssess_ParallelAndSequentialAgree(t *testing.T) {
	t.Parallel()

	mkDeps := func() Deps {
		return Deps{
			Sanctions: &stubSanctions{fn: func(_ context.Context, e entity.Logical) (domain.SanctionsResult, error) {
				return domain.SanctionsResult{
					Status:     domain.StatusOK,
					Matched:    true,
					Confidence: 88,
					Score:      40,
					Matches:    []domain.SanctionsMatch{{Name: e.Name, Confidence: 88}},
				}, nil
			}},
			Web: &stubWeb{fn: func(_ context.Context, _ entity.Logical) (domain.WebIntelResult, error) {
				return domain.WebIntelResult{
					Status:     domain.StatusOK,
					Indicators: []string{"Sanctions related indicators found"},
					Categories: []string{"sanctions"},
				}, nil
			}},
			Summarizer: &stubSummarizer{fn: func(_ context.Context, _ SummaryRequest) (domain.AISummaryResult, error) {
				return domain.AISummaryResult{
					Status:     domain.StatusOK,
					Score:      35,
					Confidence: 0.9,
					Summary:    "elevated exposure",
				}, nil
			}},
			Graph: &stubGraph{},
		}
	}

	input := entity.Input{
		Type:    entity.InputTypeBoth,
		Person:  &entity.Person{Name: "Eve Dual", Country: "FR"},
		Company: &entity.Company{Name: "Dual Holdings", Country: "FR"},
	}

	parallel := NewService(Config{FastMode: true}, mkDeps())
	sequential := NewService(Config{FastMode: false}, mkDeps())

	p, err := parallel.Assess(context.Background(), input)
	require.NoError(t, err)
	q, err := sequential.Assess(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, ModeParallel, p.ProcessingMode)
	assert.Equal(t, ModeSequential, q.ProcessingMode)
	assert.Equal(t, q.RiskScore, p.RiskScore)
	assert.Equal(t, q.RiskLevel, p.RiskLevel)
	assert.Equal(t, q.ComponentScores, p.ComponentScores)
	assert.Equal(t, q.RiskFactors, p.RiskFactors)
}

func TestAssess_PeripheryFailuresDoNotAbort(t *testing.T) {
	t.Parallel()

	hist := &memHistory{err: errors.New(errors.ErrCodeDatabaseError, "pg down")}
	pub := &stubPublisher{err: errors.New(errors.ErrCodePublishError, "broker down")}
	arc := &stubArchiver{err: errors.New(errors.ErrCodeStorageError, "bucket gone")}

	svc := NewService(Config{}, Deps{
		Sanctions: cleanSanctions(),
		History:   hist,
		Publisher: pub,
		Archiver:  arc,
	})

	res, err := svc.Assess(context.Background(), personInput("Frank Resilient"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.AssessmentID)
}

func TestAssess_PeripheryReceivesResult(t *testing.T) {
	t.Parallel()

	hist := &memHistory{}
	pub := &stubPublisher{}
	arc := &stubArchiver{}

	svc := NewService(Config{}, Deps{
		Sanctions: cleanSanctions(),
		History:   hist,
		Publisher: pub,
		Archiver:  arc,
	})

	res, err := svc.Assess(context.Background(), personInput("Grace Audited"))
	require.NoError(t, err)

	require.Len(t, hist.rows, 1)
	assert.Equal(t, res.AssessmentID, hist.rows[0].AssessmentID)
	assert.Equal(t, "Grace Audited", hist.rows[0].PrimaryName)

	require.Len(t, pub.events, 1)
	assert.Equal(t, res.AssessmentID, pub.events[0].AssessmentID)
	assert.Equal(t, res.RiskScore, pub.events[0].RiskScore)
	assert.NotEmpty(t, pub.events[0].EventID)

	require.Len(t, arc.archived, 1)
	assert.Same(t, res, arc.archived[0])
}

func TestStatistics_IncludesGraphTotals(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{FastMode: true}, Deps{
		Sanctions: cleanSanctions(),
		Graph:     &stubGraph{},
	})

	_, err := svc.Assess(context.Background(), personInput("Heidi Counted"))
	require.NoError(t, err)

	snap, graph := svc.Statistics(context.Background())
	assert.Equal(t, int64(1), snap.TotalRequests)
	assert.True(t, snap.FastMode)
	require.NotNil(t, graph)
	assert.Equal(t, int64(3), graph.Relationships)
}

func TestStatistics_GraphErrorOmitsTotals(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{}, Deps{
		Graph: &stubGraph{statErr: errors.New(errors.ErrCodeGraphError, "bolt refused")},
	})

	_, graph := svc.Statistics(context.Background())
	assert.Nil(t, graph)
}

func TestSetFastMode_TogglesProcessingMode(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{}, Deps{Sanctions: cleanSanctions()})
	assert.False(t, svc.FastMode())

	svc.SetFastMode(true)
	assert.True(t, svc.FastMode())

	res, err := svc.Assess(context.Background(), personInput("Ivan Fast"))
	require.NoError(t, err)
	assert.Equal(t, ModeParallel, res.ProcessingMode)
}

func TestRecentAssessments(t *testing.T) {
	t.Parallel()

	hist := &memHistory{}
	svc := NewService(Config{}, Deps{Sanctions: cleanSanctions(), History: hist})

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := svc.Assess(context.Background(), personInput(name))
		require.NoError(t, err)
	}

	rows, err := svc.RecentAssessments(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Three", rows[0].PrimaryName)
	assert.Equal(t, "Two", rows[1].PrimaryName)
}

func TestAssess_ConcurrentDuplicatesShareOneRun(t *testing.T) {
	t.Parallel()

	var calls int32
	release := make(chan struct{})
	sanctions := &stubSanctions{fn: func(_ context.Context, _ entity.Logical) (domain.SanctionsResult, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return domain.SanctionsResult{Status: domain.StatusEmpty}, nil
	}}

	svc := NewService(Config{}, Deps{Sanctions: sanctions})
	input := personInput("Judy Duplicate")

	results := make(chan *Result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, err := svc.Assess(context.Background(), input)
			assert.NoError(t, err)
			results <- res
		}()
	}

	// Give both goroutines time to reach the in-flight group before the
	// leader finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)

	first := <-results
	second := <-results
	assert.Equal(t, first.AssessmentID, second.AssessmentID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRecentAssessments_NoStoreConfigured(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{}, Deps{})
	_, err := svc.RecentAssessments(context.Background(), 5)
	assert.Error(t, err)
}
