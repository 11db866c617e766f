package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/testutil"
)

func TestRecordingLogger(t *testing.T) {
	logger := testutil.NewRecordingLogger()

	logger.Info("cache warmed", logging.Int("entries", 3))
	logger.Warn("source degraded")

	entries := logger.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "cache warmed", entries[0].Message)

	assert.True(t, logger.Has("warn", "degraded"))
	assert.False(t, logger.Has("error", "degraded"))

	logger.Reset()
	assert.Empty(t, logger.Entries())
}

func TestRecordingLogger_ChildLoggersShareRecorder(t *testing.T) {
	logger := testutil.NewRecordingLogger()

	logger.Named("assessment").With(logging.String("request_id", "r-1")).Error("boom")
	assert.True(t, logger.Has("error", "boom"))
}
