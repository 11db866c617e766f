package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// AssessmentCache stores completed assessment documents keyed by input
// fingerprint. It implements assessment.ResultCache: Get returns (nil, nil)
// on a miss and the coordinator treats read errors as misses, so this cache
// can degrade without taking assessments down.
type AssessmentCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
}

// CacheOption customizes an AssessmentCache.
type CacheOption func(*AssessmentCache)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) CacheOption {
	return func(c *AssessmentCache) { c.prefix = prefix }
}

// WithDefaultTTL sets the TTL used when Set is called with a zero ttl.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *AssessmentCache) { c.defaultTTL = ttl }
}

// NewAssessmentCache builds the cache on top of an established client.
func NewAssessmentCache(client *Client, log logging.Logger, opts ...CacheOption) *AssessmentCache {
	c := &AssessmentCache{
		client:     client,
		logger:     log,
		prefix:     "risknet:assessment:",
		defaultTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AssessmentCache) key(fingerprint string) string {
	return c.prefix + fingerprint
}

// jitterTTL spreads expirations by ±10% so a burst of assessments does not
// expire as one thundering herd.
func (c *AssessmentCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

// Get returns the cached result for the fingerprint, or (nil, nil) when the
// key is absent.
func (c *AssessmentCache) Get(ctx context.Context, fingerprint string) (*assessment.Result, error) {
	data, err := c.client.Get(ctx, c.key(fingerprint))
	if IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "reading cached assessment")
	}

	var res assessment.Result
	if err := json.Unmarshal(data, &res); err != nil {
		// A corrupt entry must not poison the fingerprint forever.
		if _, delErr := c.client.Del(ctx, c.key(fingerprint)); delErr != nil {
			c.logger.Warn("failed to evict corrupt cache entry",
				logging.String("fingerprint", fingerprint),
				logging.Err(delErr))
		}
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "decoding cached assessment")
	}
	return &res, nil
}

// Set stores the result under the fingerprint with a jittered TTL.
func (c *AssessmentCache) Set(ctx context.Context, fingerprint string, res *assessment.Result, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding assessment for cache")
	}
	if err := c.client.Set(ctx, c.key(fingerprint), data, c.jitterTTL(ttl)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "writing cached assessment")
	}
	return nil
}

// Invalidate removes one cached assessment.
func (c *AssessmentCache) Invalidate(ctx context.Context, fingerprint string) error {
	if _, err := c.client.Del(ctx, c.key(fingerprint)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "invalidating cached assessment")
	}
	return nil
}

// InvalidateAll removes every cached assessment under the prefix. Used by
// the admin surface after scoring-rule changes.
func (c *AssessmentCache) InvalidateAll(ctx context.Context) (int64, error) {
	var removed int64
	err := c.client.Scan(ctx, c.prefix+"*", func(keys []string) error {
		n, err := c.client.Del(ctx, keys...)
		removed += n
		return err
	})
	if err != nil {
		return removed, errors.Wrap(err, errors.ErrCodeCacheError, "flushing assessment cache")
	}
	return removed, nil
}

// Ping reports backend connectivity for the health endpoint.
func (c *AssessmentCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
