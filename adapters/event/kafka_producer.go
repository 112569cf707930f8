package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/application/service"
	"github.com/khoahotran/devprofile/internal/config"
	"github.com/khoahotran/devprofile/pkg/logger"
)

const TopicProfileEvents = "profile.events"

type KafkaProducerClient struct {
	ProfileEventsWriter *kafka.Writer
	log                 logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicProfileEvents,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}

	log.Info("Initialize Kafka Producer successfully.", zap.Strings("brokers", brokers))
	return &KafkaProducerClient{ProfileEventsWriter: writer, log: log}, nil
}

// Publish keys messages by profile id so events for one profile stay ordered.
func (c *KafkaProducerClient) Publish(ctx context.Context, evt service.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.ProfileEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.ProfileID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.ProfileEventsWriter != nil {
		if err := c.ProfileEventsWriter.Close(); err != nil {
			c.log.Warn("Failed to close Kafka writer", zap.Error(err))
		}
	}
	c.log.Info("Closed Kafka Producer")
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, service.Event) error { return nil }
