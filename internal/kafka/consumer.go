package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/portfolio-valuation/internal/models"
)

// Revaluer runs one revaluation on request
type Revaluer interface {
	Revalue(ctx context.Context, reason string) error
}

// messageReader is the subset of *kafka.Reader the consumer needs
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

// TriggerConsumer starts a revaluation for every REVALUATION_REQUESTED or
// WALLET_UPDATED event on its topic
type TriggerConsumer struct {
	reader   messageReader
	revaluer Revaluer
	log      zerolog.Logger
}

// NewTriggerConsumer creates a new Kafka consumer for revaluation triggers
func NewTriggerConsumer(brokers []string, topic, groupID string, revaluer Revaluer, log zerolog.Logger) *TriggerConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1e6, // 1MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &TriggerConsumer{
		reader:   reader,
		revaluer: revaluer,
		log:      log.With().Str("component", "trigger-consumer").Logger(),
	}
}

// Start consumes messages until ctx is cancelled
func (c *TriggerConsumer) Start(ctx context.Context) error {
	c.log.Info().Str("topic", c.reader.Config().Topic).Msg("Starting Kafka trigger consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("Kafka trigger consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c.reader.Close()
				}
				c.log.Error().Err(err).Msg("Error reading message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.log.Error().Err(err).Int64("offset", msg.Offset).Msg("Error processing message")
			}
		}
	}
}

func (c *TriggerConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.TriggerEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal trigger event: %w", err)
	}

	switch event.EventType {
	case models.EventRevaluationRequested, models.EventWalletUpdated:
	default:
		c.log.Debug().Str("event_type", event.EventType).Msg("Ignoring event type")
		return nil
	}

	reason := "kafka:" + event.EventType
	if event.Source != "" {
		reason += ":" + event.Source
	}

	if err := c.revaluer.Revalue(ctx, reason); err != nil {
		return fmt.Errorf("revaluation failed: %w", err)
	}
	return nil
}

// Close closes the Kafka consumer
func (c *TriggerConsumer) Close() error {
	return c.reader.Close()
}
