// Package config provides configuration loading, defaults, and validation
// for the RiskNet assessment engine.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 15 * time.Second

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "risknet"
	DefaultDBMaxConns = 25

	DefaultNeo4jURI      = "bolt://localhost:7687"
	DefaultNeo4jUser     = "neo4j"
	DefaultNeo4jDatabase = "neo4j"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisDB        = 0
	DefaultRedisKeyPrefix = "risknet:"

	DefaultKafkaBroker         = "localhost:9092"
	DefaultKafkaCompletedTopic = "risknet.assessment.completed"

	DefaultOpenSearchAddress = "http://localhost:9200"
	DefaultOpenSearchIndex   = "risknet-adverse-media"
	DefaultOpenSearchMaxHits = 20

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "risknet-reports"

	DefaultSanctionsBaseURL   = "https://api.opensanctions.org"
	DefaultSanctionsTimeout   = 10 * time.Second
	DefaultSanctionsThreshold = 70.0
	DefaultSanctionsMatches   = 5

	DefaultWebSearchBaseURL = "https://google.serper.dev"
	DefaultWebSearchTimeout = 10 * time.Second
	DefaultWebSearchResults = 10

	DefaultAIBaseURL = "https://api.openai.com/v1"
	DefaultAIModel   = "gpt-4o-mini"
	DefaultAITimeout = 30 * time.Second
	DefaultAITokens  = 800

	DefaultSourceTimeout = 10 * time.Second
	DefaultWebTimeout    = 30 * time.Second
	DefaultCacheTTL      = time.Hour
	DefaultHistoryLimit  = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins. It must be called
// after unmarshalling and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ──────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// ── Database ────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}

	// ── Neo4j ───────────────────────────────────────────────────────────────
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.User == "" {
		cfg.Neo4j.User = DefaultNeo4jUser
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultNeo4jDatabase
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = 50
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 5 * time.Second
	}

	// ── Redis ───────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}

	// ── Kafka ───────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.CompletedTopic == "" {
		cfg.Kafka.CompletedTopic = DefaultKafkaCompletedTopic
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}

	// ── OpenSearch ──────────────────────────────────────────────────────────
	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{DefaultOpenSearchAddress}
	}
	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = DefaultOpenSearchIndex
	}
	if cfg.OpenSearch.MaxHits == 0 {
		cfg.OpenSearch.MaxHits = DefaultOpenSearchMaxHits
	}

	// ── MinIO ───────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Sanctions ───────────────────────────────────────────────────────────
	if cfg.Sanctions.BaseURL == "" {
		cfg.Sanctions.BaseURL = DefaultSanctionsBaseURL
	}
	if cfg.Sanctions.Timeout == 0 {
		cfg.Sanctions.Timeout = DefaultSanctionsTimeout
	}
	if cfg.Sanctions.MatchThreshold == 0 {
		cfg.Sanctions.MatchThreshold = DefaultSanctionsThreshold
	}
	if cfg.Sanctions.MaxMatches == 0 {
		cfg.Sanctions.MaxMatches = DefaultSanctionsMatches
	}

	// ── Web search ──────────────────────────────────────────────────────────
	if cfg.WebSearch.BaseURL == "" {
		cfg.WebSearch.BaseURL = DefaultWebSearchBaseURL
	}
	if cfg.WebSearch.Timeout == 0 {
		cfg.WebSearch.Timeout = DefaultWebSearchTimeout
	}
	if cfg.WebSearch.MaxResults == 0 {
		cfg.WebSearch.MaxResults = DefaultWebSearchResults
	}

	// ── AI ──────────────────────────────────────────────────────────────────
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = DefaultAIBaseURL
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = DefaultAIModel
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = DefaultAITimeout
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = DefaultAITokens
	}

	// ── Assessment ──────────────────────────────────────────────────────────
	if cfg.Assessment.SourceTimeout == 0 {
		cfg.Assessment.SourceTimeout = DefaultSourceTimeout
	}
	if cfg.Assessment.WebTimeout == 0 {
		cfg.Assessment.WebTimeout = DefaultWebTimeout
	}
	if cfg.Assessment.AITimeout == 0 {
		cfg.Assessment.AITimeout = cfg.AI.Timeout
	}
	if cfg.Assessment.CacheTTL == 0 {
		cfg.Assessment.CacheTTL = DefaultCacheTTL
	}
	if cfg.Assessment.HistoryLimit == 0 {
		cfg.Assessment.HistoryLimit = DefaultHistoryLimit
	}

	// ── Log ─────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}
