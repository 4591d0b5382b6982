package mongo

import (
	"context"
	"fmt"
	"strconv"

	"airseat/pkg/logger"
	"airseat/pkg/model"
)

// SeatDirectory is the write side of the seat repository used for seeding.
type SeatDirectory interface {
	CountPlanes(ctx context.Context) (int64, error)
	CreatePlane(ctx context.Context, plane *model.Plane) error
	CreateSeats(ctx context.Context, seats []model.Seat) error
}

type DemoPlane struct {
	Name string
	Rows int
}

var DemoFleet = []DemoPlane{
	{Name: "Airbus A320", Rows: 30},
	{Name: "Boeing 737-800", Rows: 32},
	{Name: "Embraer E190", Rows: 20},
}

// SeedDemoData inserts fleet with a full six-abreast cabin per plane. It does
// nothing when any plane already exists.
func SeedDemoData(ctx context.Context, seats SeatDirectory, fleet []DemoPlane, log *logger.Logger) (int, error) {
	count, err := seats.CountPlanes(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Info("Planes already present, skipping demo seed", "planes", count)
		return 0, nil
	}

	for _, demo := range fleet {
		plane := &model.Plane{Name: demo.Name}
		if err := seats.CreatePlane(ctx, plane); err != nil {
			return 0, fmt.Errorf("failed to seed plane %s: %w", demo.Name, err)
		}

		cabin := CabinLayout(plane.ID, demo.Rows)
		if err := seats.CreateSeats(ctx, cabin); err != nil {
			return 0, fmt.Errorf("failed to seed seats of %s: %w", demo.Name, err)
		}
		log.Info("Seeded plane", "plane_id", plane.ID, "name", plane.Name, "seats", len(cabin))
	}
	return len(fleet), nil
}

// CabinLayout returns rows x model.SeatColumns seats for planeID, row-major.
func CabinLayout(planeID string, rows int) []model.Seat {
	seats := make([]model.Seat, 0, rows*len(model.SeatColumns))
	for row := 1; row <= rows; row++ {
		for _, column := range model.SeatColumns {
			seats = append(seats, model.Seat{
				PlaneID: planeID,
				Row:     strconv.Itoa(row),
				Column:  column,
			})
		}
	}
	return seats
}
