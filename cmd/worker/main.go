// The worker binary consumes assessment lifecycle events from Kafka and
// feeds the completed ones into the OpenSearch assessment index, making
// past screenings searchable alongside the adverse-media articles.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/config"
	"github.com/turtacn/risknet/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/websearch/adversemedia"
)

var (
	version = "dev"
	commit  = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultGroupID    = "risknet-worker"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	groupID := flag.String("group", defaultGroupID, "Kafka consumer group")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting risknet worker",
		logging.String("version", version),
		logging.String("commit", commit))

	if err := run(cfg, *groupID, logger); err != nil {
		logger.Fatal("worker exited", logging.Err(err))
	}
}

func run(cfg *config.Config, groupID string, logger logging.Logger) error {
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka is disabled; the worker has nothing to consume")
	}
	if !cfg.OpenSearch.Enabled {
		return fmt.Errorf("opensearch is disabled; the worker has nowhere to index")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	amCfg := adversemedia.Config{
		Addresses:    cfg.OpenSearch.Addresses,
		Username:     cfg.OpenSearch.User,
		Password:     cfg.OpenSearch.Password,
		ArticleIndex: cfg.OpenSearch.Index,
	}
	osClient, err := adversemedia.Connect(ctx, amCfg, logger.Named("opensearch"))
	if err != nil {
		return fmt.Errorf("connect opensearch: %w", err)
	}
	indexer := adversemedia.NewIndexer(osClient, osClient.Indices, amCfg, logger.Named("indexer"))
	if err := indexer.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:     cfg.Kafka.Brokers,
		GroupID:     groupID,
		Topic:       cfg.Kafka.CompletedTopic,
		StartOffset: "earliest",
	}, logger.Named("consumer"))
	if err != nil {
		return fmt.Errorf("init consumer: %w", err)
	}
	defer consumer.Close()

	handler := func(ctx context.Context, env *kafka.EventEnvelope) error {
		if env.EventType != kafka.EventTypeAssessmentCompleted {
			logger.Debug("skipping event", logging.String("event_type", env.EventType))
			return nil
		}
		var ev appassessment.CompletedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			logger.Warn("malformed completed event", logging.Err(err))
			return nil
		}
		return indexer.IndexCompleted(ctx, ev)
	}

	err = consumer.Run(ctx, handler)
	if errors.Is(err, context.Canceled) || errors.Is(err, kafka.ErrConsumerClosed) {
		logger.Info("worker stopped")
		return nil
	}
	return err
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
