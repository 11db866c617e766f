package prometheus

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "risknet"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	t.Parallel()

	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestRegisterCounter_IncrementsAppearInScrape(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	vec := c.RegisterCounter("assessments_total", "test counter", "risk_level")
	vec.WithLabelValues("very_high").Inc()
	vec.WithLabelValues("very_high").Add(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "risknet_assessments_total")
	assert.Contains(t, body, `risk_level="very_high"`)
	assert.Contains(t, body, "3")
}

func TestRegister_IsIdempotentPerName(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	first := c.RegisterCounter("cache_access_total", "test", "result")
	second := c.RegisterCounter("cache_access_total", "test", "result")

	first.WithLabelValues("hit").Inc()
	second.WithLabelValues("hit").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "2")
}

func TestRegisterHistogram_ObservesDurations(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	vec := c.RegisterHistogram("source_call_duration_seconds", "test", nil, "source")
	vec.WithLabelValues("sanctions").Observe(0.2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "source_call_duration_seconds_count")
}

func TestAppMetrics_RecordHelpers(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	m := NewAppMetrics(c)

	RecordHTTPRequest(m, "POST", "/api/v1/assess", 200, 150*time.Millisecond)
	RecordAssessment(m, "person", "very_high", false, 80, "parallel", time.Second)
	RecordAssessment(m, "person", "very_high", true, 80, "parallel", 0)
	RecordSourceCall(m, "web_intelligence", 2*time.Second, "timed_out")
	RecordCacheAccess(m, true)
	RecordCacheAccess(m, false)
	RecordPublish(m, "risknet.assessment.completed", nil)
	RecordPublish(m, "risknet.assessment.completed", errors.New("broker down"))
	RecordArchive(m, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "risknet_assessments_total")
	assert.Contains(t, body, `cached="true"`)
	assert.Contains(t, body, `status="timed_out"`)
	assert.Contains(t, body, `result="hit"`)
	assert.Contains(t, body, `status="error"`)
}

func TestAppMetrics_NilReceiverHelpersAreSafe(t *testing.T) {
	t.Parallel()

	RecordHTTPRequest(nil, "GET", "/", 200, 0)
	RecordAssessment(nil, "person", "low", false, 10, "parallel", 0)
	RecordSourceCall(nil, "sanctions", 0, "")
	RecordCacheAccess(nil, true)
	RecordPublish(nil, "t", nil)
	RecordArchive(nil, nil)
}

func TestTimer_ObservesElapsed(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	vec := c.RegisterHistogram("assessment_duration_seconds", "test", nil, "mode")
	timer := NewTimer(vec.WithLabelValues("sequential"))
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDuration()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "assessment_duration_seconds_count")
}
