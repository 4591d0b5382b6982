package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"airseat/internal/bookings/events"
	"airseat/pkg/config"
	"airseat/pkg/kafka"
	kafka_config "airseat/pkg/kafka/config"
	kafka_middleware "airseat/pkg/kafka/middleware"
)

const ServiceName = "booking-events"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.BookingEventsGroupID,
		cfg.BookingEventsDLQTopic,
		events.NewAuditHandler(cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming booking events",
		"topic", cfg.BookingEventsTopic,
		"group_id", cfg.BookingEventsGroupID,
		"dlq_topic", cfg.BookingEventsDLQTopic,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Booking events consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close booking events consumer", "error", err)
	}
	cfg.Log.Info("Booking events consumer metrics", metrics.Snapshot().LogAttrs()...)
	cfg.Log.Info("Booking events consumer stopped gracefully")
}
