package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	r := newEngine(RequestLogger(nil, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestRequestLogger_MintsRequestID(t *testing.T) {
	r := newEngine(RequestLogger(nil, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestCORS_Preflight(t *testing.T) {
	r := newEngine(CORS(DefaultCORSConfig()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://allowed.example.com"}
	r := newEngine(CORS(cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)

	// Request still served, but without CORS grant.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	l := NewTokenBucketLimiter(100, 1, 0)
	defer l.Stop()

	ok, _ := l.Allow("client")
	require.True(t, ok)
	ok, _ = l.Allow("client")
	require.False(t, ok)

	time.Sleep(20 * time.Millisecond)
	ok, _ = l.Allow("client")
	assert.True(t, ok)
}

func TestTokenBucket_KeysAreIndependent(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, 0)
	defer l.Stop()

	ok, _ := l.Allow("a")
	require.True(t, ok)
	ok, _ = l.Allow("b")
	assert.True(t, ok)
	assert.Equal(t, 2, l.BucketCount())
}

func TestRateLimit_SkipPaths(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, 0)
	defer l.Stop()

	r := gin.New()
	r.Use(RateLimit(l, RateLimitConfig{BurstSize: 1, SkipPaths: []string{"/healthz"}}))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_SetsHeaders(t *testing.T) {
	l := NewTokenBucketLimiter(1, 5, 0)
	defer l.Stop()

	r := gin.New()
	r.Use(RateLimit(l, RateLimitConfig{BurstSize: 5}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}
