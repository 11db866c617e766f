// Package assessment coordinates one risk assessment end to end: entity
// validation, cache lookup, fan-out to the intelligence sources, score
// aggregation, and the best-effort periphery (cache write, history row,
// completion event, report archive).
package assessment

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/domain/relationship"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/risknet/pkg/errors"
)

// Service is the assessment coordinator consumed by the HTTP and CLI
// surfaces.
type Service interface {
	// Assess runs or replays a full risk assessment for the given input.
	Assess(ctx context.Context, input entity.Input) (*Result, error)

	// Statistics returns the service counters plus graph-wide totals when
	// the relationship store is configured.
	Statistics(ctx context.Context) (Statistics, *relationship.GraphStats)

	// RecentAssessments returns the newest audit rows, most recent first.
	RecentAssessments(ctx context.Context, limit int) ([]HistoryRecord, error)

	// SetFastMode toggles parallel source collection for subsequent
	// requests.
	SetFastMode(enabled bool)

	// FastMode reports whether parallel collection is active.
	FastMode() bool
}

// Config carries the coordinator's tunables. Zero values fall back to the
// defaults below.
type Config struct {
	SourceTimeout time.Duration
	WebTimeout    time.Duration
	AITimeout     time.Duration
	CacheTTL      time.Duration
	FastMode      bool
}

const (
	defaultSourceTimeout = 10 * time.Second
	defaultWebTimeout    = 30 * time.Second
	defaultAITimeout     = 30 * time.Second
	defaultCacheTTL      = time.Hour
)

// Deps wires the coordinator to its sources and periphery. Every field is
// optional: a nil source is recorded as skipped, a nil periphery component
// is simply not used.
type Deps struct {
	Sanctions  SanctionsProvider
	Web        WebIntelligenceProvider
	Summarizer Summarizer
	Graph      relationship.Store

	Cache     ResultCache
	History   HistoryStore
	Publisher EventPublisher
	Archiver  ReportArchiver

	Stats   *StatsCollector
	Logger  logging.Logger
	Metrics *prometheus.AppMetrics
}

type service struct {
	cfg   Config
	deps  Deps
	cols  *collector
	stats *StatsCollector
	log   logging.Logger

	fastMode atomic.Bool
	flight   singleflight.Group
}

// NewService builds the coordinator, applying defaults for missing tunables
// and a no-op logger when none is given.
func NewService(cfg Config, deps Deps) Service {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = defaultSourceTimeout
	}
	if cfg.WebTimeout <= 0 {
		cfg.WebTimeout = defaultWebTimeout
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = defaultAITimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Stats == nil {
		deps.Stats = NewStatsCollector()
	}

	s := &service{
		cfg:   cfg,
		deps:  deps,
		stats: deps.Stats,
		log:   deps.Logger.Named("assessment"),
		cols: &collector{
			sanctions:     deps.Sanctions,
			web:           deps.Web,
			summarizer:    deps.Summarizer,
			graph:         deps.Graph,
			sourceTimeout: cfg.SourceTimeout,
			webTimeout:    cfg.WebTimeout,
			aiTimeout:     cfg.AITimeout,
			logger:        deps.Logger.Named("fanout"),
			metrics:       deps.Metrics,
		},
	}
	s.fastMode.Store(cfg.FastMode)
	return s
}

func (s *service) SetFastMode(enabled bool) { s.fastMode.Store(enabled) }

func (s *service) FastMode() bool { return s.fastMode.Load() }

func (s *service) mode() Mode {
	if s.fastMode.Load() {
		return ModeParallel
	}
	return ModeSequential
}

// Assess validates the input, replays a cached result when the fingerprint
// matches, and otherwise collects, aggregates, and persists a fresh
// assessment. The only error that aborts a collected assessment is an
// aggregation failure; degraded sources are reported inside the result.
func (s *service) Assess(ctx context.Context, input entity.Input) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	entities := input.Entities()
	fingerprint := input.Fingerprint()
	start := time.Now()

	if cached := s.lookupCache(ctx, fingerprint); cached != nil {
		s.stats.RecordCacheHit()
		prometheus.RecordCacheAccess(s.deps.Metrics, true)
		prometheus.RecordAssessment(s.deps.Metrics, string(input.Type), string(cached.RiskLevel), true, cached.RiskScore, string(cached.ProcessingMode), 0)
		s.log.Info("assessment served from cache",
			logging.String("fingerprint", fingerprint),
			logging.Int("risk_score", cached.RiskScore))
		return cached, nil
	}
	if s.deps.Cache != nil {
		prometheus.RecordCacheAccess(s.deps.Metrics, false)
	}

	// Concurrent requests for the same fingerprint share one assessment
	// run; duplicates piggyback on the leader's result and are not counted
	// separately.
	v, err, _ := s.flight.Do(fingerprint, func() (interface{}, error) {
		return s.run(ctx, input, entities, fingerprint, start)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// run executes one uncached assessment: collect, aggregate, persist.
func (s *service) run(ctx context.Context, input entity.Input, entities []entity.Logical, fingerprint string, start time.Time) (*Result, error) {
	mode := s.mode()
	set := s.cols.Collect(ctx, entities, mode)

	agg, err := domain.Aggregate(set)
	if err != nil {
		s.stats.RecordFailure()
		s.log.Error("risk aggregation failed",
			logging.String("fingerprint", fingerprint),
			logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeAggregationFailure, "aggregating source scores")
	}

	took := time.Since(start)
	res := &Result{
		AssessmentID:    uuid.NewString(),
		InputType:       input.Type,
		Entities:        entities,
		RiskScore:       agg.Score,
		RiskLevel:       agg.Level,
		ComponentScores: agg.Components,
		Weights:         agg.Weights,
		RiskFactors:     agg.Factors,
		DegradedSources: agg.Degraded,
		Sanctions:       set.Sanctions,
		Web:             set.Web,
		AISummary:       set.AI,
		Relationships:   set.Relationships,
		Recommendations: buildRecommendations(agg.Score, agg.Level, input.Type),
		Fingerprint:     fingerprint,
		ProcessingMode:  mode,
		ProcessingTime:  took,
		CreatedAt:       time.Now().UTC(),
	}

	s.stats.RecordAssessment(res.RiskLevel, res.DegradedSources, took)
	prometheus.RecordAssessment(s.deps.Metrics, string(input.Type), string(res.RiskLevel), false, res.RiskScore, string(mode), took)

	s.persist(ctx, res, entities)

	s.log.Info("assessment completed",
		logging.String("assessment_id", res.AssessmentID),
		logging.String("input_type", string(input.Type)),
		logging.Int("risk_score", res.RiskScore),
		logging.String("risk_level", string(res.RiskLevel)),
		logging.Int("degraded_sources", len(res.DegradedSources)),
		logging.Duration("took", took))

	return res, nil
}

// lookupCache treats every cache problem as a miss so a flaky cache can
// never take assessments down with it.
func (s *service) lookupCache(ctx context.Context, fingerprint string) *Result {
	if s.deps.Cache == nil {
		return nil
	}
	res, err := s.deps.Cache.Get(ctx, fingerprint)
	if err != nil {
		s.log.Warn("cache read failed, treating as miss",
			logging.String("fingerprint", fingerprint),
			logging.Err(err))
		return nil
	}
	if res == nil {
		return nil
	}
	replay := *res
	replay.Cached = true
	return &replay
}

// persist runs the best-effort periphery: cache write, audit row, completion
// event, report archive. Failures are logged and dropped.
func (s *service) persist(ctx context.Context, res *Result, entities []entity.Logical) {
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, res.Fingerprint, res, s.cfg.CacheTTL); err != nil {
			s.log.Warn("cache write failed", logging.Err(err))
		}
	}

	if s.deps.History != nil {
		rec := HistoryRecord{
			AssessmentID: res.AssessmentID,
			Fingerprint:  res.Fingerprint,
			InputType:    res.InputType,
			RiskScore:    res.RiskScore,
			RiskLevel:    res.RiskLevel,
			Factors:      res.RiskFactors,
			Duration:     res.ProcessingTime,
			CreatedAt:    res.CreatedAt,
		}
		if len(entities) > 0 {
			rec.PrimaryName = entities[0].Name
		}
		if err := s.deps.History.Save(ctx, rec); err != nil {
			s.log.Warn("history write failed",
				logging.String("assessment_id", res.AssessmentID),
				logging.Err(err))
		}
	}

	if s.deps.Publisher != nil {
		ev := CompletedEvent{
			EventID:      uuid.NewString(),
			AssessmentID: res.AssessmentID,
			Fingerprint:  res.Fingerprint,
			InputType:    res.InputType,
			RiskScore:    res.RiskScore,
			RiskLevel:    res.RiskLevel,
			Degraded:     res.DegradedSources,
			OccurredAt:   res.CreatedAt,
		}
		err := s.deps.Publisher.PublishCompleted(ctx, ev)
		prometheus.RecordPublish(s.deps.Metrics, "risknet.assessment.completed", err)
		if err != nil {
			s.log.Warn("event publish failed",
				logging.String("assessment_id", res.AssessmentID),
				logging.Err(err))
		}
	}

	if s.deps.Archiver != nil {
		err := s.deps.Archiver.Archive(ctx, res)
		prometheus.RecordArchive(s.deps.Metrics, err)
		if err != nil {
			s.log.Warn("report archive failed",
				logging.String("assessment_id", res.AssessmentID),
				logging.Err(err))
		}
	}
}

func (s *service) Statistics(ctx context.Context) (Statistics, *relationship.GraphStats) {
	snap := s.stats.Snapshot()
	snap.FastMode = s.fastMode.Load()

	if s.deps.Graph == nil {
		return snap, nil
	}
	gs, err := s.deps.Graph.Stats(ctx)
	if err != nil {
		s.log.Warn("graph stats unavailable", logging.Err(err))
		return snap, nil
	}
	return snap, &gs
}

func (s *service) RecentAssessments(ctx context.Context, limit int) ([]HistoryRecord, error) {
	if s.deps.History == nil {
		return nil, errors.New(errors.ErrCodeAssessmentNotFound, "assessment history is not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.deps.History.Recent(ctx, limit)
}
