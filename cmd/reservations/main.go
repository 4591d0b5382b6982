package main

import (
	"context"

	authhandler "airseat/internal/auth/handler"
	authrepository "airseat/internal/auth/repository"
	authservice "airseat/internal/auth/service"
	authvalidator "airseat/internal/auth/validator"
	bookingsevents "airseat/internal/bookings/events"
	bookingshandler "airseat/internal/bookings/handler"
	bookingsrepository "airseat/internal/bookings/repository"
	bookingsservice "airseat/internal/bookings/service"
	bookingsvalidator "airseat/internal/bookings/validator"
	ledgerrepository "airseat/internal/ledger/repository"
	reservationshandler "airseat/internal/reservations/handler"
	reservationsservice "airseat/internal/reservations/service"
	reservationsvalidator "airseat/internal/reservations/validator"
	seatshandler "airseat/internal/seats/handler"
	seatsrepository "airseat/internal/seats/repository"
	seatsservice "airseat/internal/seats/service"
	"airseat/pkg/app"
	"airseat/pkg/config"
	"airseat/pkg/contracts"
	kafka_config "airseat/pkg/kafka/config"
	kafka_middleware "airseat/pkg/kafka/middleware"
	"airseat/pkg/token"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	serverApp := app.NewApplication(cfg, tokens)

	publisher := initPublisher(cfg, serverApp)
	handlers := initHandlers(cfg, tokens, publisher)

	serverApp.SetApp(app.NewHealthHandler(cfg.Log, healthChecks(cfg)...), handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, tokens *token.Manager, publisher bookingsevents.Publisher) []contracts.Handler {
	ledger := ledgerrepository.NewMongoSeatReservationRepository(cfg)

	seatService := seatsservice.NewSeatService(seatsrepository.NewMongoSeatRepository(cfg), ledger, cfg)

	bookingService := bookingsservice.NewBookingService(
		bookingsrepository.NewMongoBookingRepository(cfg),
		ledger,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	reservationService := reservationsservice.NewReservationService(
		ledger,
		seatService,
		bookingService,
		reservationsvalidator.NewReservationValidator(cfg.Log),
		cfg,
	)

	authService, err := authservice.NewAuthService(
		authrepository.NewMongoUserRepository(cfg),
		tokens,
		authvalidator.NewAuthValidator(cfg.Log),
		cfg,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize auth service", "error", err)
	}

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		seatshandler.NewSeatHandler(seatService, cfg.Log),
		reservationshandler.NewReservationHandler(reservationService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		authhandler.NewAuthHandler(authService, cfg.Log),
	}
}

// initPublisher returns the Kafka booking events publisher, or a no-op one
// when Kafka is disabled or misconfigured.
func initPublisher(cfg *config.Config, serverApp *app.Application) bookingsevents.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events are not published")
		return bookingsevents.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Error("Invalid Kafka configuration, booking events are not published", "error", err)
		return bookingsevents.NoopPublisher{}
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	metrics := kafka_middleware.NewMetrics()
	publisher, err := bookingsevents.NewKafkaPublisher(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, metrics, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create booking events publisher", "error", err)
		return bookingsevents.NoopPublisher{}
	}

	serverApp.OnShutdown(publisher)
	serverApp.OnShutdown(contracts.CloserFunc(func() error {
		cfg.Log.Info("Booking events publisher metrics", metrics.Snapshot().LogAttrs()...)
		return nil
	}))
	cfg.Log.Info("Booking events published to Kafka", "topic", cfg.BookingEventsTopic)
	return publisher
}

func healthChecks(cfg *config.Config) []app.DependencyCheck {
	checks := []app.DependencyCheck{{
		Name: "mongo",
		Ping: func(ctx context.Context) error { return cfg.Client.Mongo.Ping(ctx, nil) },
	}}
	if cfg.Client.Redis != nil {
		checks = append(checks, app.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return cfg.Client.Redis.Ping(ctx).Err() },
		})
	}
	return checks
}
