package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/risknet/internal/config"
)

// validConfig returns a config that passes Validate with every external
// integration enabled.
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Database.Enabled = true
	cfg.Database.User = "risknet"
	cfg.Neo4j.Enabled = true
	cfg.Redis.Enabled = true
	cfg.Kafka.Enabled = true
	cfg.OpenSearch.Enabled = true
	cfg.MinIO.Enabled = true
	return cfg
}

func TestConfig_Validate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_FullyEnabled(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantSub string
	}{
		{"port out of range", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad server mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"enabled db missing user", func(c *config.Config) { c.Database.User = "" }, "database.user"},
		{"enabled neo4j missing uri", func(c *config.Config) { c.Neo4j.URI = "" }, "neo4j.uri"},
		{"enabled redis missing addr", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"enabled kafka no brokers", func(c *config.Config) { c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"enabled opensearch no index", func(c *config.Config) { c.OpenSearch.Index = "" }, "opensearch.index"},
		{"enabled minio no bucket", func(c *config.Config) { c.MinIO.Bucket = "" }, "minio.bucket"},
		{"threshold above range", func(c *config.Config) { c.Sanctions.MatchThreshold = 120 }, "sanctions.match_threshold"},
		{"zero source timeout", func(c *config.Config) { c.Assessment.SourceTimeout = 0 }, "assessment.source_timeout"},
		{"zero web timeout", func(c *config.Config) { c.Assessment.WebTimeout = 0 }, "assessment.web_timeout"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "logfmt" }, "log.format"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}
}

func TestConfig_Validate_DisabledSectionsSkipped(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Database.Enabled = false
	cfg.Database.User = ""
	cfg.Kafka.Enabled = false
	cfg.Kafka.Brokers = nil

	assert.NoError(t, cfg.Validate())
}
