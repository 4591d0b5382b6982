package events

import (
	"context"
	"fmt"
	"time"

	"airseat/pkg/kafka"
	kafka_config "airseat/pkg/kafka/config"
	kafka_middleware "airseat/pkg/kafka/middleware"
	"airseat/pkg/logger"
	"airseat/pkg/model"
)

const publishTimeout = 5 * time.Second

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher writes booking events keyed by booking id, so the events of
// one booking stay ordered on a single partition.
type KafkaPublisher struct {
	producer messagePublisher
	now      func() time.Time
}

func NewKafkaPublisher(cfg *kafka_config.Config, topic, dlqTopic string, metrics *kafka_middleware.Metrics, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking events producer: %w", err)
	}

	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
		if metrics != nil {
			producer.Use(metrics.ProducerMiddleware())
		}
	}

	return &KafkaPublisher{producer: producer, now: time.Now}, nil
}

// Publish is detached from ctx cancellation: the booking change it reports
// has already been committed.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(NewBookingEvent(booking, p.now())).
		WithEventType(eventType).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		WithCorrelationID(logger.RequestID(ctx)).
		Build()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
