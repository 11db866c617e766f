package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	SkipPaths         []string
	CleanupInterval   time.Duration
}

// DefaultRateLimitConfig allows a sustained 10 rps with a burst of 20 and
// leaves the probes unmetered.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter tracks one token bucket per client key. Idle buckets
// are reaped in the background so the map cannot grow without bound.
type TokenBucketLimiter struct {
	rate      float64
	burstSize int

	mu      sync.RWMutex
	buckets map[string]*tokenBucket

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewTokenBucketLimiter builds the limiter and starts its cleanup loop when
// an interval is given.
func NewTokenBucketLimiter(rate float64, burstSize int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		rate:            rate,
		burstSize:       burstSize,
		buckets:         make(map[string]*tokenBucket),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow consumes one token for key, reporting whether the request may pass
// and how many tokens remain.
func (l *TokenBucketLimiter) Allow(key string) (bool, int) {
	now := time.Now()

	l.mu.RLock()
	bucket, ok := l.buckets[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		bucket, ok = l.buckets[key]
		if !ok {
			bucket = &tokenBucket{tokens: float64(l.burstSize), lastRefill: now}
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.tokens += now.Sub(bucket.lastRefill).Seconds() * l.rate
	if bucket.tokens > float64(l.burstSize) {
		bucket.tokens = float64(l.burstSize)
	}
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		return false, 0
	}
	bucket.tokens--
	return true, int(bucket.tokens)
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup drops buckets that have been idle at full capacity for longer
// than the cleanup interval.
func (l *TokenBucketLimiter) cleanup() {
	threshold := time.Now().Add(-l.cleanupInterval)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		bucket.mu.Lock()
		if bucket.lastRefill.Before(threshold) && bucket.tokens >= float64(l.burstSize)-1 {
			delete(l.buckets, key)
		}
		bucket.mu.Unlock()
	}
}

// Stop ends the cleanup loop.
func (l *TokenBucketLimiter) Stop() { l.stopOnce.Do(func() { close(l.stopCleanup) }) }

// BucketCount reports the number of live buckets.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// RateLimit enforces the per-client-IP limit, exposing the usual
// X-RateLimit-* headers and answering 429 when the bucket is empty.
func RateLimit(limiter *TokenBucketLimiter, cfg RateLimitConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		allowed, remaining := limiter.Allow(c.ClientIP())
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.BurstSize))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    "COMMON_006",
				"message": "rate limit exceeded, retry later",
			})
			return
		}
		c.Next()
	}
}
