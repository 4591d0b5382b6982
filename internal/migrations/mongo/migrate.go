package mongo

import (
	"context"
	"fmt"

	"airseat/internal/migrations/mongo/validators"
	"airseat/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared with the repositories.
const (
	PlanesCollection           = "Planes"
	SeatsCollection            = "Seats"
	SeatReservationsCollection = "Seat_reservations"
	BookingsCollection         = "Bookings"
	UsersCollection            = "Users"
)

var (
	SeatsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "plane_id", Value: 1},
				{Key: "row", Value: 1},
				{Key: "column", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_plane_seat"),
		},
	}

	// The ledger's exclusivity comes from its composite _id; these serve the
	// availability overlay and unlock-all.
	SeatReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "plane_id", Value: 1},
			{Key: "travel_date", Value: 1},
			{Key: "travel_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "is_locked", Value: 1},
		}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "booking_date", Value: -1},
		}},
	}

	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
	}
)

type collectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the service owns, in creation order.
var Collections = []collectionDef{
	{Name: PlanesCollection, Validator: validators.PlaneValidator},
	{Name: SeatsCollection, Indexes: SeatsIndexes, Validator: validators.SeatValidator},
	{Name: SeatReservationsCollection, Indexes: SeatReservationsIndexes, Validator: validators.SeatReservationValidator},
	{Name: BookingsCollection, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
	{Name: UsersCollection, Indexes: UsersIndexes, Validator: validators.UserValidator},
}

// RunMigration creates or updates every collection with its validator and
// indexes. It is safe to run repeatedly.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
