package websearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "reuters.com", ExtractDomain("https://www.reuters.com/article/1"))
	assert.Equal(t, "treasury.gov", ExtractDomain("https://treasury.gov/press"))
	assert.Equal(t, "not a url", ExtractDomain("not a url"))
}

func TestIsTrustedDomain(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTrustedDomain("bbc.com"))
	assert.True(t, IsTrustedDomain("Treasury.GOV"))
	assert.False(t, IsTrustedDomain("example.com"))
}

func TestEstimateSentiment(t *testing.T) {
	t.Parallel()

	assert.Zero(t, EstimateSentiment(nil))

	neg := EstimateSentiment([]string{"fraud investigation and sanctions violation"})
	assert.Negative(t, neg)

	pos := EstimateSentiment([]string{"innovation award for successful growth"})
	assert.Positive(t, pos)

	// Clamped to [-1,1] even for keyword-dense text.
	dense := EstimateSentiment([]string{"fraud fraud fraud fraud fraud"})
	assert.GreaterOrEqual(t, dense, -1.0)
}
