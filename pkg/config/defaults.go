package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "airseat"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultEnvFile  = ".env"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTTTL     = 7 * 24 * time.Hour
	DefaultBcryptCost = 10
	MinJWTSecretLen   = 16

	// DefaultJWTSecret is only fit for local development.
	DefaultJWTSecret = "airseat-local-dev-secret"

	DefaultSeatUnitPrice = 100.0
	DefaultPaymentDelay  = 2 * time.Second

	DefaultRedisDB = 0

	DefaultBookingEventsTopic    = "airseat.booking-events"
	DefaultBookingEventsDLQTopic = "airseat.booking-events.dlq"
	DefaultBookingEventsGroupID  = "airseat-booking-audit"
)
