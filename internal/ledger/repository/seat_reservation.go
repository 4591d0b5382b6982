package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgererrors "airseat/internal/ledger/errors"
	"airseat/pkg/config"
	mongotx "airseat/pkg/db/mongo"
	"airseat/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Seat_reservations"
)

// SeatReservationRepository is the availability ledger. Every write is a
// single-document compare-and-swap keyed by FlightInstance.SeatKey.
type SeatReservationRepository interface {
	FindByFlight(ctx context.Context, flight model.FlightInstance) ([]*model.SeatReservation, error)
	Lock(ctx context.Context, flight model.FlightInstance, seatID, holder string) error
	Reserve(ctx context.Context, flight model.FlightInstance, seatID, holder, reservationID string) error
	Unlock(ctx context.Context, flight model.FlightInstance, seatID, holder string) (bool, error)
	UnlockAll(ctx context.Context, holder string) (int64, error)
	Unreserve(ctx context.Context, flight model.FlightInstance, seatIDs []string) (int64, error)
	Release(ctx context.Context, flight model.FlightInstance, seatIDs []string, holder string) (int64, error)
	ReleaseReservation(ctx context.Context, flight model.FlightInstance, seatIDs []string, reservationID string) (int64, error)
	CancelReserved(ctx context.Context, planeID, seatID string) (bool, error)
}

type mongoSeatReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSeatReservationRepository(cfg *config.Config) SeatReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSeatReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSeatReservationRepository) FindByFlight(ctx context.Context, flight model.FlightInstance) ([]*model.SeatReservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"plane_id":    flight.PlaneID,
		"travel_date": flight.TravelDate,
		"travel_time": flight.TravelTime,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find seat reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.SeatReservation
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode seat reservations: %w", err)
	}
	return entries, nil
}

// Lock takes the seat for holder unless it is reserved or locked by someone
// else. Re-locking a seat the holder already has is allowed.
func (r *mongoSeatReservationRepository) Lock(ctx context.Context, flight model.FlightInstance, seatID, holder string) error {
	return r.claim(ctx, flight, seatID, holder, bson.M{
		"is_locked": true,
		"user_id":   holder,
	})
}

// Reserve marks the seat reserved for holder under reservationID, the id the
// resulting booking carries. The seat must be free or locked by the same
// holder.
func (r *mongoSeatReservationRepository) Reserve(ctx context.Context, flight model.FlightInstance, seatID, holder, reservationID string) error {
	return r.claim(ctx, flight, seatID, holder, bson.M{
		"is_reserved":    true,
		"is_locked":      false,
		"user_id":        holder,
		"reservation_id": reservationID,
	})
}

// claim is a conditional upsert on the flight seat key. When the document
// exists but the filter does not match, the upsert's insert collides with the
// existing _id and the driver reports a duplicate key error.
func (r *mongoSeatReservationRepository) claim(ctx context.Context, flight model.FlightInstance, seatID, holder string, set bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	set["updated_at"] = now

	filter := bson.M{
		"_id":         flight.SeatKey(seatID),
		"is_reserved": bson.M{"$ne": true},
		"$or": bson.A{
			bson.M{"is_locked": bson.M{"$ne": true}},
			bson.M{"user_id": holder},
		},
	}

	onInsert := bson.M{
		"plane_id":    flight.PlaneID,
		"seat_id":     seatID,
		"travel_date": flight.TravelDate,
		"travel_time": flight.TravelTime,
		"created_at":  now,
	}
	for _, field := range []string{"is_reserved", "is_locked"} {
		if _, ok := set[field]; !ok {
			onInsert[field] = false
		}
	}

	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ledgererrors.ErrSeatUnavailable, seatID)
		}
		return fmt.Errorf("failed to claim seat %s: %w", seatID, err)
	}
	return nil
}

func (r *mongoSeatReservationRepository) Unlock(ctx context.Context, flight model.FlightInstance, seatID, holder string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":       flight.SeatKey(seatID),
		"user_id":   holder,
		"is_locked": true,
	}
	result, err := r.collection.UpdateOne(ctx, filter, clearHold(false))
	if err != nil {
		return false, fmt.Errorf("failed to unlock seat %s: %w", seatID, err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoSeatReservationRepository) UnlockAll(ctx context.Context, holder string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"user_id":   holder,
		"is_locked": true,
	}
	result, err := r.collection.UpdateMany(ctx, filter, clearHold(false))
	if err != nil {
		return 0, fmt.Errorf("failed to unlock seats of %s: %w", holder, err)
	}
	return result.ModifiedCount, nil
}

// Unreserve clears reservations on the given seats whoever holds them. It is
// the staff override.
func (r *mongoSeatReservationRepository) Unreserve(ctx context.Context, flight model.FlightInstance, seatIDs []string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":         bson.M{"$in": seatKeys(flight, seatIDs)},
		"is_reserved": true,
	}
	result, err := r.collection.UpdateMany(ctx, filter, clearHold(true))
	if err != nil {
		return 0, fmt.Errorf("failed to unreserve seats: %w", err)
	}
	return result.ModifiedCount, nil
}

// Release frees every seat of seatIDs held by holder, locked or reserved.
func (r *mongoSeatReservationRepository) Release(ctx context.Context, flight model.FlightInstance, seatIDs []string, holder string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":     bson.M{"$in": seatKeys(flight, seatIDs)},
		"user_id": holder,
	}
	result, err := r.collection.UpdateMany(ctx, filter, clearHold(true))
	if err != nil {
		return 0, fmt.Errorf("failed to release seats: %w", err)
	}
	return result.ModifiedCount, nil
}

// ReleaseReservation frees the seats still held under reservationID. A seat
// that was cancelled and reserved again belongs to a newer reservation and is
// left alone.
func (r *mongoSeatReservationRepository) ReleaseReservation(ctx context.Context, flight model.FlightInstance, seatIDs []string, reservationID string) (int64, error) {
	if reservationID == "" {
		return 0, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":            bson.M{"$in": seatKeys(flight, seatIDs)},
		"reservation_id": reservationID,
	}
	result, err := r.collection.UpdateMany(ctx, filter, clearHold(true))
	if err != nil {
		return 0, fmt.Errorf("failed to release reservation %s: %w", reservationID, err)
	}
	return result.ModifiedCount, nil
}

// CancelReserved clears the first reservation found for the seat on any
// flight instance of the plane.
func (r *mongoSeatReservationRepository) CancelReserved(ctx context.Context, planeID, seatID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"plane_id":    planeID,
		"seat_id":     seatID,
		"is_reserved": true,
	}
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "travel_date", Value: 1}})

	err := r.collection.FindOneAndUpdate(ctx, filter, clearHold(true), opts).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to cancel seat %s: %w", seatID, err)
	}
	return true, nil
}

func clearHold(includeReservation bool) bson.M {
	set := bson.M{
		"is_locked":  false,
		"user_id":    "",
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if !includeReservation {
		return bson.M{"$set": set}
	}
	set["is_reserved"] = false
	return bson.M{"$set": set, "$unset": bson.M{"reservation_id": ""}}
}

func seatKeys(flight model.FlightInstance, seatIDs []string) []string {
	keys := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		keys = append(keys, flight.SeatKey(id))
	}
	return keys
}
