package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	DriverGoChannel = "gochannel"
	DriverKafka     = "kafka"
)

// Config selects and configures the message broker
type Config struct {
	Driver        string
	KafkaBrokers  []string
	ConsumerGroup string
}

// EventPublisher publishes domain events. Callers treat failures as
// non-fatal once their transaction has committed.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
	Close() error
}

// Bus owns the watermill publisher and subscriber of one driver. With the
// gochannel driver both sides are the same in-process channel.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	logger     watermill.LoggerAdapter
	shared     bool
}

// NewBus connects to the broker named by cfg.Driver
func NewBus(cfg Config, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch strings.ToLower(cfg.Driver) {
	case "", DriverGoChannel:
		channel := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &Bus{Publisher: channel, Subscriber: channel, logger: wmLogger, shared: true}, nil

	case DriverKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("kafka driver requires at least one broker")
		}

		publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}

		subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:               cfg.KafkaBrokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
			ConsumerGroup:         cfg.ConsumerGroup,
		}, wmLogger)
		if err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
		}

		return &Bus{Publisher: publisher, Subscriber: subscriber, logger: wmLogger}, nil

	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// Close closes both sides of the bus
func (b *Bus) Close() error {
	pubErr := b.Publisher.Close()
	if b.shared {
		return pubErr
	}
	return errors.Join(pubErr, b.Subscriber.Close())
}

// WatermillEventPublisher publishes JSON envelopes on the topic named by
// the event type
type WatermillEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewWatermillEventPublisher(publisher message.Publisher, logger *slog.Logger) EventPublisher {
	return &WatermillEventPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	event := NewEvent(eventType, data)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", event.Type)
	msg.Metadata.Set("source", event.Source)

	if err := p.publisher.Publish(eventType, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.logger.Debug("Event published", "type", eventType, "event_id", event.ID)
	return nil
}

// Close is a no-op; the Bus owns the underlying publisher
func (p *WatermillEventPublisher) Close() error {
	return nil
}
