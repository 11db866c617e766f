package assessment

import (
	"sync"
	"time"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
)

// Statistics is a point-in-time snapshot of the service counters.
type Statistics struct {
	TotalRequests   int64                      `json:"total_requests"`
	CacheHits       int64                      `json:"cache_hits"`
	CacheHitRatio   float64                    `json:"cache_hit_ratio"`
	FailedRequests  int64                      `json:"failed_requests"`
	AverageDuration time.Duration              `json:"average_duration_ms"`
	ByLevel         map[domain.RiskLevel]int64 `json:"assessments_by_level"`
	DegradedCounts  map[domain.SourceName]int64 `json:"degraded_by_source"`
	FastMode        bool                       `json:"fast_mode"`
	StartedAt       time.Time                  `json:"started_at"`
}

// StatsCollector accumulates service counters behind a mutex. It is injected
// into the service rather than living as package state, so tests get a fresh
// collector and multiple service instances never share counts.
type StatsCollector struct {
	mu            sync.Mutex
	total         int64
	cacheHits     int64
	failed        int64
	totalDuration time.Duration
	byLevel       map[domain.RiskLevel]int64
	degraded      map[domain.SourceName]int64
	startedAt     time.Time
}

// NewStatsCollector returns an empty collector.
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		byLevel:   make(map[domain.RiskLevel]int64),
		degraded:  make(map[domain.SourceName]int64),
		startedAt: time.Now(),
	}
}

// RecordAssessment accounts one completed (non-cached) assessment.
func (c *StatsCollector) RecordAssessment(level domain.RiskLevel, degraded []domain.SourceName, took time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.totalDuration += took
	c.byLevel[level]++
	for _, s := range degraded {
		c.degraded[s]++
	}
}

// RecordCacheHit accounts one request served from cache.
func (c *StatsCollector) RecordCacheHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.cacheHits++
}

// RecordFailure accounts one aborted assessment.
func (c *StatsCollector) RecordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.failed++
}

// Snapshot returns a copy of the current counters.
func (c *StatsCollector) Snapshot() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Statistics{
		TotalRequests:  c.total,
		CacheHits:      c.cacheHits,
		FailedRequests: c.failed,
		ByLevel:        make(map[domain.RiskLevel]int64, len(c.byLevel)),
		DegradedCounts: make(map[domain.SourceName]int64, len(c.degraded)),
		StartedAt:      c.startedAt,
	}
	for k, v := range c.byLevel {
		snap.ByLevel[k] = v
	}
	for k, v := range c.degraded {
		snap.DegradedCounts[k] = v
	}
	if c.total > 0 {
		snap.CacheHitRatio = float64(c.cacheHits) / float64(c.total)
	}
	if completed := c.total - c.cacheHits - c.failed; completed > 0 {
		snap.AverageDuration = c.totalDuration / time.Duration(completed)
	}
	return snap
}
