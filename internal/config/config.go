// Package config defines all configuration structures for the RiskNet
// assessment engine. No I/O or parsing logic lives here — only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the assessment
// history store.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// Neo4jConfig holds connection parameters for the relationship graph.
type Neo4jConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
	Database              string        `mapstructure:"database"`
}

// RedisConfig holds connection parameters for the assessment result cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds producer parameters for assessment lifecycle events.
type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	CompletedTopic  string   `mapstructure:"completed_topic"`
	ProducerRetries int      `mapstructure:"producer_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
	RequiredAcks    int      `mapstructure:"required_acks"`
}

// OpenSearchConfig holds cluster parameters for the adverse-media index.
type OpenSearchConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	Index              string   `mapstructure:"index"`
	MaxHits            int      `mapstructure:"max_hits"`
}

// MinIOConfig holds object-storage parameters for archived assessment
// reports.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// SanctionsConfig holds OpenSanctions screening parameters. An empty APIKey
// disables the source; the assessment records it as skipped.
type SanctionsConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MatchThreshold float64       `mapstructure:"match_threshold"`
	MaxMatches     int           `mapstructure:"max_matches"`
}

// WebSearchConfig holds Serper web-search parameters. An empty APIKey
// disables the source.
type WebSearchConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
}

// AIConfig holds summarizer parameters. An empty APIKey falls back to the
// rule-based summarizer when FallbackEnabled is set, otherwise the source is
// skipped.
type AIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Temperature     float32       `mapstructure:"temperature"`
	FallbackEnabled bool          `mapstructure:"fallback_enabled"`
}

// AssessmentConfig holds coordinator tunables.
type AssessmentConfig struct {
	SourceTimeout time.Duration `mapstructure:"source_timeout"`
	WebTimeout    time.Duration `mapstructure:"web_timeout"`
	AITimeout     time.Duration `mapstructure:"ai_timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	FastMode      bool          `mapstructure:"fast_mode"`
	HistoryLimit  int           `mapstructure:"history_limit"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the engine. Every
// infrastructure component and the assessment coordinator read their
// settings from the relevant sub-struct. External integrations are optional:
// a disabled section means the corresponding source is skipped or the
// periphery component is not wired.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Sanctions  SanctionsConfig  `mapstructure:"sanctions"`
	WebSearch  WebSearchConfig  `mapstructure:"websearch"`
	AI         AIConfig         `mapstructure:"ai"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
	Log        LogConfig        `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application. Disabled sections are not
// validated.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
		}
	}

	// Neo4j
	if c.Neo4j.Enabled {
		if c.Neo4j.URI == "" {
			return fmt.Errorf("config: neo4j.uri is required")
		}
		if c.Neo4j.User == "" {
			return fmt.Errorf("config: neo4j.user is required")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.CompletedTopic == "" {
			return fmt.Errorf("config: kafka.completed_topic is required")
		}
	}

	// OpenSearch
	if c.OpenSearch.Enabled {
		if len(c.OpenSearch.Addresses) == 0 {
			return fmt.Errorf("config: opensearch.addresses must contain at least one address")
		}
		if c.OpenSearch.Index == "" {
			return fmt.Errorf("config: opensearch.index is required")
		}
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required")
		}
	}

	// Sanctions
	if c.Sanctions.MatchThreshold < 0 || c.Sanctions.MatchThreshold > 100 {
		return fmt.Errorf("config: sanctions.match_threshold %.1f is out of range [0, 100]", c.Sanctions.MatchThreshold)
	}

	// Assessment
	if c.Assessment.SourceTimeout <= 0 {
		return fmt.Errorf("config: assessment.source_timeout must be positive, got %s", c.Assessment.SourceTimeout)
	}
	if c.Assessment.WebTimeout <= 0 {
		return fmt.Errorf("config: assessment.web_timeout must be positive, got %s", c.Assessment.WebTimeout)
	}
	if c.Assessment.AITimeout <= 0 {
		return fmt.Errorf("config: assessment.ai_timeout must be positive, got %s", c.Assessment.AITimeout)
	}
	if c.Assessment.CacheTTL <= 0 {
		return fmt.Errorf("config: assessment.cache_ttl must be positive, got %s", c.Assessment.CacheTTL)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
