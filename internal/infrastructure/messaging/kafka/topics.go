package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// TopicConfig describes one topic to ensure at startup.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	DeleteTopics(topics ...string) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates and inspects Kafka topics.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials the first broker for admin operations.
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePublishError, "failed to dial kafka")
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

// NewTopicManagerWithConn wraps an existing connection (for testing).
func NewTopicManagerWithConn(conn ConnInterface, logger logging.Logger) *TopicManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger}
}

// CreateTopic creates one topic, tolerating prior existence.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if cfg.NumPartitions <= 0 {
		return errors.New(errors.ErrCodeValidation, "partitions must be > 0")
	}
	if cfg.ReplicationFactor <= 0 {
		return errors.New(errors.ErrCodeValidation, "replication factor must be > 0")
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{
			ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", cfg.RetentionMs),
		})
	}
	if cfg.CleanupPolicy != "" {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{
			ConfigName: "cleanup.policy", ConfigValue: cfg.CleanupPolicy,
		})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodePublishError,
			fmt.Sprintf("failed to create topic %s", cfg.Name))
	}
	m.logger.Info("Topic created", logging.String("topic", cfg.Name))
	return nil
}

// TopicExists reports whether the topic has at least one partition.
func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

// ListTopics returns the distinct topic names visible on the broker.
func (m *TopicManager) ListTopics(ctx context.Context) ([]string, error) {
	partitions, err := m.conn.ReadPartitions()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePublishError, "failed to read partitions")
	}

	seen := make(map[string]bool)
	var topics []string
	for _, p := range partitions {
		if !seen[p.Topic] {
			seen[p.Topic] = true
			topics = append(topics, p.Topic)
		}
	}
	return topics, nil
}

// EnsureTopics creates every topic that does not exist yet.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, topic := range topics {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

// EnsureDefaultTopics creates the assessment topics with the given
// replication factor (1 for single-broker deployments).
func (m *TopicManager) EnsureDefaultTopics(ctx context.Context, replicationFactor int) error {
	return m.EnsureTopics(ctx, DefaultTopics(replicationFactor))
}

// Close releases the admin connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics lists the topics the service publishes to. Completed
// events are retained for 30 days.
func DefaultTopics(replicationFactor int) []TopicConfig {
	if replicationFactor <= 0 {
		replicationFactor = 1
	}
	return []TopicConfig{
		{
			Name:              TopicAssessmentCompleted,
			NumPartitions:     6,
			ReplicationFactor: replicationFactor,
			RetentionMs:       30 * 24 * 3600 * 1000,
		},
	}
}
