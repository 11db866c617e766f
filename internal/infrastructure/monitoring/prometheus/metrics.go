package prometheus

import (
	"strconv"
	"time"
)

// Default histogram buckets.
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultSourceDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30}
)

// AppMetrics bundles every metric the engine emits. Construct once at
// startup with NewAppMetrics and inject where needed; all fields are safe
// for concurrent use.
type AppMetrics struct {
	// HTTP surface.
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Assessments.
	AssessmentsTotal   CounterVec
	AssessmentDuration HistogramVec
	AssessmentScore    HistogramVec

	// Intelligence sources.
	SourceCallDuration  HistogramVec
	SourceDegradedTotal CounterVec

	// Cache.
	CacheAccessTotal CounterVec

	// Relationship graph.
	GraphQueryDuration HistogramVec

	// Periphery (events, archive).
	EventsPublishedTotal CounterVec
	ArchiveWritesTotal   CounterVec
}

// NewAppMetrics registers the engine's metrics against the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter(
		"http_requests_total", "HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram(
		"http_request_duration_seconds", "HTTP request duration",
		DefaultHTTPDurationBuckets, "method", "path")

	m.AssessmentsTotal = collector.RegisterCounter(
		"assessments_total", "Completed assessments", "input_type", "risk_level", "cached")
	m.AssessmentDuration = collector.RegisterHistogram(
		"assessment_duration_seconds", "End-to-end assessment duration",
		DefaultSourceDurationBuckets, "mode")
	m.AssessmentScore = collector.RegisterHistogram(
		"assessment_score", "Final risk score distribution",
		[]float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, "input_type")

	m.SourceCallDuration = collector.RegisterHistogram(
		"source_call_duration_seconds", "Per-source call duration",
		DefaultSourceDurationBuckets, "source")
	m.SourceDegradedTotal = collector.RegisterCounter(
		"source_degraded_total", "Source calls absorbed into neutral results", "source", "status")

	m.CacheAccessTotal = collector.RegisterCounter(
		"cache_access_total", "Assessment cache accesses", "result")

	m.GraphQueryDuration = collector.RegisterHistogram(
		"graph_query_duration_seconds", "Relationship graph query duration",
		DefaultHTTPDurationBuckets, "query_type")

	m.EventsPublishedTotal = collector.RegisterCounter(
		"events_published_total", "Assessment events published", "topic", "status")
	m.ArchiveWritesTotal = collector.RegisterCounter(
		"archive_writes_total", "Assessment reports archived", "status")

	return m
}

// RecordHTTPRequest accounts one handled HTTP request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAssessment accounts one completed assessment.
func RecordAssessment(m *AppMetrics, inputType, level string, cached bool, score int, mode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.AssessmentsTotal.WithLabelValues(inputType, level, strconv.FormatBool(cached)).Inc()
	if !cached {
		m.AssessmentDuration.WithLabelValues(mode).Observe(duration.Seconds())
		m.AssessmentScore.WithLabelValues(inputType).Observe(float64(score))
	}
}

// RecordSourceCall accounts one intelligence-source call. degradedStatus is
// empty for successful calls.
func RecordSourceCall(m *AppMetrics, source string, duration time.Duration, degradedStatus string) {
	if m == nil {
		return
	}
	m.SourceCallDuration.WithLabelValues(source).Observe(duration.Seconds())
	if degradedStatus != "" {
		m.SourceDegradedTotal.WithLabelValues(source, degradedStatus).Inc()
	}
}

// RecordCacheAccess accounts one assessment-cache lookup.
func RecordCacheAccess(m *AppMetrics, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheAccessTotal.WithLabelValues(result).Inc()
}

// RecordPublish accounts one event-publish attempt.
func RecordPublish(m *AppMetrics, topic string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}

// RecordArchive accounts one report-archive attempt.
func RecordArchive(m *AppMetrics, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ArchiveWritesTotal.WithLabelValues(status).Inc()
}
