package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
)

func TestEventEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEventEnvelope(EventTypeAssessmentCompleted, map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "risknet-api", env.Source)
	assert.Equal(t, "v1", env.SchemaVersion)

	msg, err := env.ToMessage(TopicAssessmentCompleted, "some-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("some-key"), msg.Key)
	assert.Equal(t, EventTypeAssessmentCompleted, msg.Headers["event_type"])

	parsed, err := ParseEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, parsed.EventID)

	var payload map[string]string
	require.NoError(t, parsed.DecodePayload(&payload))
	assert.Equal(t, "v", payload["k"])
}

func TestParseEnvelope_Invalid(t *testing.T) {
	_, err := ParseEnvelope(nil)
	assert.Error(t, err)

	_, err = ParseEnvelope([]byte("{broken"))
	assert.Error(t, err)
}

func TestAssessmentPublisher_PublishCompleted(t *testing.T) {
	w := &mockWriter{}
	p := newTestProducer(w)
	pub := NewAssessmentPublisher(p, "", logging.NewNopLogger())

	ev := appassessment.CompletedEvent{
		EventID:      "ev-1",
		AssessmentID: "as-1",
		Fingerprint:  "deadbeef",
		InputType:    entity.InputTypePerson,
		RiskScore:    61,
		RiskLevel:    domain.LevelHigh,
		OccurredAt:   time.Now().UTC(),
	}
	require.NoError(t, pub.PublishCompleted(context.Background(), ev))
	require.Len(t, w.written, 1)

	msg := w.written[0]
	assert.Equal(t, TopicAssessmentCompleted, msg.Topic, "empty topic falls back to the default")
	assert.Equal(t, []byte("deadbeef"), msg.Key)

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, EventTypeAssessmentCompleted, env.EventType)

	var decoded appassessment.CompletedEvent
	require.NoError(t, env.DecodePayload(&decoded))
	assert.Equal(t, "as-1", decoded.AssessmentID)
	assert.Equal(t, 61, decoded.RiskScore)
}

func TestAssessmentPublisher_ProducerFailureSurfaces(t *testing.T) {
	w := &mockWriter{err: assert.AnError}
	pub := NewAssessmentPublisher(newTestProducer(w), "custom.topic", logging.NewNopLogger())

	err := pub.PublishCompleted(context.Background(), appassessment.CompletedEvent{
		EventID: "ev-2", AssessmentID: "as-2", Fingerprint: "ff",
	})
	assert.Error(t, err)
}
