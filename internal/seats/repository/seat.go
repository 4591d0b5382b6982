package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	seatserrors "airseat/internal/seats/errors"
	"airseat/pkg/config"
	mongotx "airseat/pkg/db/mongo"
	"airseat/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PlanesCollection = "Planes"
	SeatsCollection  = "Seats"
)

// SeatRepository reads the static seat directory: planes and their seats.
type SeatRepository interface {
	FindPlaneByID(ctx context.Context, id string) (*model.Plane, error)
	FindAllPlanes(ctx context.Context) ([]*model.Plane, error)
	FindByPlane(ctx context.Context, planeID string) ([]model.Seat, error)
	FindByIDs(ctx context.Context, planeID string, seatIDs []string) ([]model.Seat, error)
	FindAll(ctx context.Context) ([]model.Seat, error)
	CreatePlane(ctx context.Context, plane *model.Plane) error
	CreateSeats(ctx context.Context, seats []model.Seat) error
	CountPlanes(ctx context.Context) (int64, error)
}

type mongoSeatRepository struct {
	cfg    *config.Config
	planes *mongo.Collection
	seats  *mongo.Collection
}

func NewMongoSeatRepository(cfg *config.Config) SeatRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSeatRepository{
		cfg:    cfg,
		planes: db.Collection(PlanesCollection),
		seats:  db.Collection(SeatsCollection),
	}
}

func (r *mongoSeatRepository) FindPlaneByID(ctx context.Context, id string) (*model.Plane, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", seatserrors.ErrInvalidID, id)
	}

	var plane model.Plane
	err = r.planes.FindOne(ctx, bson.M{"_id": objectID}).Decode(&plane)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, seatserrors.ErrPlaneNotFound
		}
		return nil, fmt.Errorf("failed to find plane: %w", err)
	}
	return &plane, nil
}

func (r *mongoSeatRepository) FindAllPlanes(ctx context.Context) ([]*model.Plane, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.planes.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find planes: %w", err)
	}
	defer cursor.Close(ctx)

	var planes []*model.Plane
	if err = cursor.All(ctx, &planes); err != nil {
		return nil, fmt.Errorf("failed to decode planes: %w", err)
	}
	return planes, nil
}

func (r *mongoSeatRepository) FindByPlane(ctx context.Context, planeID string) ([]model.Seat, error) {
	return r.find(ctx, bson.M{"plane_id": planeID})
}

// FindByIDs returns the seats of planeID among seatIDs. Ids that are not valid
// ObjectIDs or belong to another plane are silently absent from the result.
func (r *mongoSeatRepository) FindByIDs(ctx context.Context, planeID string, seatIDs []string) ([]model.Seat, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(seatIDs))
	for _, id := range seatIDs {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return nil, nil
	}

	return r.find(ctx, bson.M{
		"plane_id": planeID,
		"_id":      bson.M{"$in": objectIDs},
	})
}

func (r *mongoSeatRepository) FindAll(ctx context.Context) ([]model.Seat, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoSeatRepository) find(ctx context.Context, filter bson.M) ([]model.Seat, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.seats.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}
	defer cursor.Close(ctx)

	var seats []model.Seat
	if err = cursor.All(ctx, &seats); err != nil {
		return nil, fmt.Errorf("failed to decode seats: %w", err)
	}

	SortSeats(seats)
	return seats, nil
}

func (r *mongoSeatRepository) CreatePlane(ctx context.Context, plane *model.Plane) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.planes.InsertOne(ctx, plane)
	if err != nil {
		return fmt.Errorf("failed to create plane: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		plane.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSeatRepository) CreateSeats(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]any, 0, len(seats))
	for _, seat := range seats {
		docs = append(docs, seat)
	}

	result, err := r.seats.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create seats: %w", err)
	}
	for i, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			seats[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoSeatRepository) CountPlanes(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.planes.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count planes: %w", err)
	}
	return count, nil
}

// SortSeats orders seats by plane, numeric row, then column.
func SortSeats(seats []model.Seat) {
	sort.SliceStable(seats, func(i, j int) bool {
		if seats[i].PlaneID != seats[j].PlaneID {
			return seats[i].PlaneID < seats[j].PlaneID
		}
		ri, _ := seats[i].RowNumber()
		rj, _ := seats[j].RowNumber()
		if ri != rj {
			return ri < rj
		}
		return seats[i].Column < seats[j].Column
	})
}
