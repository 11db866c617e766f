package kafka

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
)

type mockConn struct {
	created    []kafkago.TopicConfig
	createErr  error
	partitions map[string][]kafkago.Partition
	closed     bool
}

func (m *mockConn) CreateTopics(topics ...kafkago.TopicConfig) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockConn) DeleteTopics(topics ...string) error { return nil }

func (m *mockConn) ReadPartitions(topics ...string) ([]kafkago.Partition, error) {
	if len(topics) == 0 {
		var all []kafkago.Partition
		for _, ps := range m.partitions {
			all = append(all, ps...)
		}
		return all, nil
	}
	var out []kafkago.Partition
	for _, t := range topics {
		out = append(out, m.partitions[t]...)
	}
	return out, nil
}

func (m *mockConn) Close() error {
	m.closed = true
	return nil
}

func TestCreateTopic_AppliesRetention(t *testing.T) {
	conn := &mockConn{}
	mgr := NewTopicManagerWithConn(conn, logging.NewNopLogger())

	err := mgr.CreateTopic(context.Background(), TopicConfig{
		Name:              TopicAssessmentCompleted,
		NumPartitions:     6,
		ReplicationFactor: 1,
		RetentionMs:       1000,
	})
	require.NoError(t, err)
	require.Len(t, conn.created, 1)
	assert.Equal(t, TopicAssessmentCompleted, conn.created[0].Topic)
	require.Len(t, conn.created[0].ConfigEntries, 1)
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)
}

func TestCreateTopic_Validation(t *testing.T) {
	mgr := NewTopicManagerWithConn(&mockConn{}, logging.NewNopLogger())

	assert.Error(t, mgr.CreateTopic(context.Background(), TopicConfig{}))
	assert.Error(t, mgr.CreateTopic(context.Background(), TopicConfig{Name: "t", ReplicationFactor: 1}))
	assert.Error(t, mgr.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1}))
}

func TestCreateTopic_ToleratesExisting(t *testing.T) {
	conn := &mockConn{
		createErr: assert.AnError,
		partitions: map[string][]kafkago.Partition{
			"existing": {{Topic: "existing"}},
		},
	}
	mgr := NewTopicManagerWithConn(conn, logging.NewNopLogger())

	err := mgr.CreateTopic(context.Background(), TopicConfig{
		Name: "existing", NumPartitions: 1, ReplicationFactor: 1,
	})
	assert.NoError(t, err)
}

func TestListTopics_Deduplicates(t *testing.T) {
	conn := &mockConn{partitions: map[string][]kafkago.Partition{
		"a": {{Topic: "a"}, {Topic: "a"}},
		"b": {{Topic: "b"}},
	}}
	mgr := NewTopicManagerWithConn(conn, logging.NewNopLogger())

	topics, err := mgr.ListTopics(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, topics)
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics(0)
	require.Len(t, topics, 1)
	assert.Equal(t, TopicAssessmentCompleted, topics[0].Name)
	assert.Equal(t, 1, topics[0].ReplicationFactor, "zero falls back to single replica")

	topics = DefaultTopics(3)
	assert.Equal(t, 3, topics[0].ReplicationFactor)
}

func TestEnsureDefaultTopics(t *testing.T) {
	conn := &mockConn{}
	mgr := NewTopicManagerWithConn(conn, logging.NewNopLogger())

	require.NoError(t, mgr.EnsureDefaultTopics(context.Background(), 1))
	assert.Len(t, conn.created, 1)

	require.NoError(t, mgr.Close())
	assert.True(t, conn.closed)
}
