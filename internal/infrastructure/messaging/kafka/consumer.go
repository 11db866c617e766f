package kafka

import (
	"context"
	stderrors "errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// ErrConsumerClosed is returned by Run after Close.
var ErrConsumerClosed = errors.New(errors.ErrCodeInternal, "consumer closed")

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topic          string
	StartOffset    string // "earliest" or "latest"
	MinBytes       int
	MaxBytes       int
	CommitInterval time.Duration
}

// EnvelopeHandler processes one decoded event envelope.
type EnvelopeHandler func(ctx context.Context, env *EventEnvelope) error

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads assessment events and hands them to a handler.
// Malformed messages are committed and skipped, never retried.
type Consumer struct {
	reader    ReaderInterface
	config    ConsumerConfig
	logger    logging.Logger
	closed    atomic.Bool
	consumed  atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewConsumer creates a Consumer in the given group.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.ErrCodeValidation, "topic required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 * 1024 * 1024
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = time.Second
	}

	startOffset := kafka.FirstOffset
	if cfg.StartOffset == "latest" {
		startOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    startOffset,
	})

	return &Consumer{
		reader: reader,
		config: cfg,
		logger: logger,
	}, nil
}

// NewConsumerWithReader wraps an existing reader (for testing).
func NewConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{reader: r, config: cfg, logger: logger}
}

// Run fetches messages until the context is canceled or the consumer is
// closed. Handler errors are logged; the message is still committed.
func (c *Consumer) Run(ctx context.Context, handler EnvelopeHandler) error {
	if c.closed.Load() {
		return ErrConsumerClosed
	}

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, io.EOF) ||
				ctx.Err() != nil || c.closed.Load() {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeInternal, "fetch failed")
		}
		c.consumed.Add(1)

		env, err := ParseEnvelope(msg.Value)
		if err != nil {
			c.failed.Add(1)
			c.logger.Warn("Skipping malformed event",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		} else if err := handler(ctx, env); err != nil {
			c.failed.Add(1)
			c.logger.Warn("Event handler failed",
				logging.String("event_id", env.EventID),
				logging.Err(err))
		} else {
			c.processed.Add(1)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("Commit failed", logging.Err(err))
		}
	}
}

// Metrics returns a counters snapshot.
func (c *Consumer) Metrics() (consumed, processed, failed int64) {
	return c.consumed.Load(), c.processed.Load(), c.failed.Load()
}

// Close stops the consumer. Safe to call more than once.
func (c *Consumer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.reader.Close()
}
