// The apiserver binary runs the RiskNet assessment API: it wires the
// enabled infrastructure (Postgres history, Redis cache, Neo4j graph,
// Kafka events, MinIO archive, OpenSearch adverse media), the external
// sources, and the HTTP surface, then serves until SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/config"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/ai"
	"github.com/turtacn/risknet/internal/infrastructure/database/neo4j"
	neo4jrepos "github.com/turtacn/risknet/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/risknet/internal/infrastructure/database/postgres"
	pgrepos "github.com/turtacn/risknet/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/risknet/internal/infrastructure/database/redis"
	"github.com/turtacn/risknet/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/risknet/internal/infrastructure/sanctions/opensanctions"
	"github.com/turtacn/risknet/internal/infrastructure/storage/minio"
	"github.com/turtacn/risknet/internal/infrastructure/websearch/adversemedia"
	"github.com/turtacn/risknet/internal/infrastructure/websearch/serper"
	httpserver "github.com/turtacn/risknet/internal/interfaces/http"
	"github.com/turtacn/risknet/internal/interfaces/http/handlers"
	"github.com/turtacn/risknet/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting risknet apiserver",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("port", cfg.Server.Port))

	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("apiserver exited", logging.Err(err))
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "risknet",
	}, logger.Named("metrics"))
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	deps := appassessment.Deps{
		Logger:  logger.Named("assessment"),
		Metrics: metrics,
	}
	var checkers []handlers.HealthChecker
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// Assessment history (Postgres).
	if cfg.Database.Enabled {
		conn, err := postgres.NewConnection(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.DBName,
			Username:        cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MinConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		}, logger.Named("postgres"))
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, func() { conn.Close() })

		if cfg.Database.MigrationPath != "" {
			if err := conn.RunMigrations(cfg.Database.MigrationPath); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		deps.History = pgrepos.NewAssessmentRepo(conn, logger.Named("history"))
		checkers = append(checkers, &postgresHealthAdapter{conn: conn})
	}

	// Result cache (Redis).
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(&redis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, logger.Named("redis"))
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })

		cacheOpts := []redis.CacheOption{redis.WithDefaultTTL(cfg.Assessment.CacheTTL)}
		if cfg.Redis.KeyPrefix != "" {
			cacheOpts = append(cacheOpts, redis.WithPrefix(cfg.Redis.KeyPrefix))
		}
		deps.Cache = redis.NewAssessmentCache(client, logger.Named("cache"), cacheOpts...)
		checkers = append(checkers, &redisHealthAdapter{client: client})
	}

	// Relationship graph (Neo4j).
	if cfg.Neo4j.Enabled {
		driver, err := neo4j.NewDriver(neo4j.Config{
			URI:                          cfg.Neo4j.URI,
			Username:                     cfg.Neo4j.User,
			Password:                     cfg.Neo4j.Password,
			Database:                     cfg.Neo4j.Database,
			MaxConnectionPoolSize:        cfg.Neo4j.MaxConnectionPoolSize,
			ConnectionAcquisitionTimeout: cfg.Neo4j.ConnectionTimeout,
		}, logger.Named("neo4j"))
		if err != nil {
			return fmt.Errorf("connect neo4j: %w", err)
		}
		closers = append(closers, func() { driver.Close() })

		graph := neo4jrepos.NewEntityGraphRepo(driver, logger.Named("graph"))
		if err := graph.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure graph schema: %w", err)
		}
		deps.Graph = graph
		checkers = append(checkers, &neo4jHealthAdapter{driver: driver})
	}

	// Lifecycle events (Kafka).
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:    cfg.Kafka.Brokers,
			Acks:       acksFromConfig(cfg.Kafka.RequiredAcks),
			MaxRetries: cfg.Kafka.ProducerRetries,
			BatchSize:  cfg.Kafka.BatchSize,
		}, logger.Named("kafka"))
		if err != nil {
			return fmt.Errorf("init kafka producer: %w", err)
		}
		closers = append(closers, func() { producer.Close() })
		deps.Publisher = kafka.NewAssessmentPublisher(producer, cfg.Kafka.CompletedTopic, logger.Named("events"))
	}

	// Report archive (MinIO).
	if cfg.MinIO.Enabled {
		client, err := minio.NewClient(minio.Config{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			Bucket:          cfg.MinIO.Bucket,
			UseSSL:          cfg.MinIO.UseSSL,
		}, logger.Named("minio"))
		if err != nil {
			return fmt.Errorf("init minio client: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure report bucket: %w", err)
		}
		deps.Archiver = minio.NewReportArchive(client, logger.Named("archive"))
		checkers = append(checkers, &minioHealthAdapter{client: client})
	}

	// Sanctions screening (OpenSanctions).
	if cfg.Sanctions.APIKey != "" {
		deps.Sanctions = opensanctions.NewClient(opensanctions.Config{
			BaseURL:        cfg.Sanctions.BaseURL,
			APIKey:         cfg.Sanctions.APIKey,
			Timeout:        cfg.Sanctions.Timeout,
			MatchThreshold: cfg.Sanctions.MatchThreshold,
			MaxMatches:     cfg.Sanctions.MaxMatches,
		}, logger.Named("sanctions"))
	} else {
		logger.Warn("sanctions screening disabled: no API key configured")
	}

	// Web intelligence: prefer live search, fall back to the local
	// adverse-media index.
	matcher := domain.NewKeywordMatcher(nil)
	switch {
	case cfg.WebSearch.APIKey != "":
		deps.Web = serper.NewClient(serper.Config{
			BaseURL:    cfg.WebSearch.BaseURL,
			APIKey:     cfg.WebSearch.APIKey,
			Timeout:    cfg.WebSearch.Timeout,
			MaxResults: cfg.WebSearch.MaxResults,
		}, matcher, logger.Named("serper"))
	case cfg.OpenSearch.Enabled:
		osClient, err := adversemedia.Connect(ctx, adversemedia.Config{
			Addresses:    cfg.OpenSearch.Addresses,
			Username:     cfg.OpenSearch.User,
			Password:     cfg.OpenSearch.Password,
			ArticleIndex: cfg.OpenSearch.Index,
			MaxResults:   cfg.OpenSearch.MaxHits,
		}, logger.Named("opensearch"))
		if err != nil {
			return fmt.Errorf("connect opensearch: %w", err)
		}
		deps.Web = adversemedia.NewProvider(osClient, adversemedia.Config{
			ArticleIndex: cfg.OpenSearch.Index,
			MaxResults:   cfg.OpenSearch.MaxHits,
		}, matcher, logger.Named("adversemedia"))
	default:
		logger.Warn("web intelligence disabled: no search API key and no opensearch cluster")
	}

	// AI summarizer, with optional rule-based fallback.
	deps.Summarizer = buildSummarizer(cfg.AI, logger)

	svc := appassessment.NewService(appassessment.Config{
		SourceTimeout: cfg.Assessment.SourceTimeout,
		WebTimeout:    cfg.Assessment.WebTimeout,
		AITimeout:     cfg.Assessment.AITimeout,
		CacheTTL:      cfg.Assessment.CacheTTL,
		FastMode:      cfg.Assessment.FastMode,
	}, deps)

	rlCfg := middleware.DefaultRateLimitConfig()
	limiter := middleware.NewTokenBucketLimiter(rlCfg.RequestsPerSecond, rlCfg.BurstSize, rlCfg.CleanupInterval)
	defer limiter.Stop()

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Assessment:     handlers.NewAssessmentHandler(svc, logger.Named("http")),
		Health:         handlers.NewHealthHandler(version, checkers...),
		RateLimiter:    limiter,
		RateLimit:      rlCfg,
		Logger:         logger.Named("http"),
		Metrics:        metrics,
		MetricsHandler: gin.WrapH(collector.Handler()),
	})

	srv := httpserver.NewServer(cfg.Server, router, logger.Named("server"))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildSummarizer wires the model-backed summarizer when an API key is
// present, wrapping it in the rule-based fallback when enabled.
func buildSummarizer(cfg config.AIConfig, logger logging.Logger) appassessment.Summarizer {
	var primary appassessment.Summarizer
	if cfg.APIKey != "" {
		s, err := ai.NewOpenAISummarizer(ai.Config{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, logger.Named("ai"))
		if err != nil {
			logger.Warn("AI summarizer unavailable", logging.Err(err))
		} else {
			primary = s
		}
	}

	if cfg.FallbackEnabled {
		return ai.NewChain(primary, logger.Named("ai"))
	}
	if primary == nil {
		logger.Warn("AI analysis disabled: no API key and fallback not enabled")
		return nil
	}
	return primary
}

func acksFromConfig(required int) string {
	switch required {
	case 0:
		return "none"
	case 1:
		return "one"
	default:
		return "all"
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	format := "json"
	if cfg.Format == "text" {
		format = "console"
	}
	out := []string{"stdout"}
	if cfg.Output != "" {
		out = []string{cfg.Output}
	}
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      format,
		OutputPaths: out,
	})
}
