package main

import (
	"context"
	"time"

	mongoMigration "airseat/internal/migrations/mongo"
	seatsrepository "airseat/internal/seats/repository"
	"airseat/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if cfg.SeedDemoData {
		seeded, err := mongoMigration.SeedDemoData(ctx, seatsrepository.NewMongoSeatRepository(cfg), mongoMigration.DemoFleet, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Demo seed failed", "error", err)
		}
		cfg.Log.Info("Demo seed finished", "planes", seeded)
	}

	cfg.Log.Info("Migration completed successfully")
}
