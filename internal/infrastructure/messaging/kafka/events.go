package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

const (
	// TopicAssessmentCompleted carries one event per finished assessment.
	TopicAssessmentCompleted = "risknet.assessment.completed"

	// EventTypeAssessmentCompleted identifies the completed-assessment
	// payload inside the envelope.
	EventTypeAssessmentCompleted = "assessment.completed"

	eventSource   = "risknet-api"
	schemaVersion = "v1"
)

// EventEnvelope standardizes event messages on the wire.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope wraps a payload into a versioned envelope.
func NewEventEnvelope(eventType string, payload any) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target any) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload")
	}
	return nil
}

// ToMessage renders the envelope as a producer message for topic, keyed
// so events for the same subject land on the same partition.
func (e *EventEnvelope) ToMessage(topic string, key string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

// ParseEnvelope decodes a raw message value back into an envelope.
func ParseEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// AssessmentPublisher emits completed-assessment events.
type AssessmentPublisher struct {
	producer *Producer
	topic    string
	logger   logging.Logger
}

var _ appassessment.EventPublisher = (*AssessmentPublisher)(nil)

// NewAssessmentPublisher builds a publisher on top of a producer. An empty
// topic falls back to TopicAssessmentCompleted.
func NewAssessmentPublisher(p *Producer, topic string, log logging.Logger) *AssessmentPublisher {
	if topic == "" {
		topic = TopicAssessmentCompleted
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AssessmentPublisher{producer: p, topic: topic, logger: log}
}

// PublishCompleted wraps the event into an envelope keyed by the input
// fingerprint and writes it out.
func (a *AssessmentPublisher) PublishCompleted(ctx context.Context, ev appassessment.CompletedEvent) error {
	env, err := NewEventEnvelope(EventTypeAssessmentCompleted, ev)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(a.topic, ev.Fingerprint)
	if err != nil {
		return err
	}
	if err := a.producer.Publish(ctx, msg); err != nil {
		return err
	}
	a.logger.Debug("Assessment event published",
		logging.String("assessment_id", ev.AssessmentID),
		logging.String("topic", a.topic))
	return nil
}

// Close shuts the underlying producer down.
func (a *AssessmentPublisher) Close() error {
	return a.producer.Close()
}
