package service

import (
	"context"
	"errors"
	"strings"

	seatserrors "airseat/internal/seats/errors"
	"airseat/internal/seats/repository"
	"airseat/pkg/config"
	apperrors "airseat/pkg/errors"
	"airseat/pkg/model"
)

// AvailabilityReader is the read side of the seat reservation ledger.
type AvailabilityReader interface {
	FindByFlight(ctx context.Context, flight model.FlightInstance) ([]*model.SeatReservation, error)
}

type SeatService interface {
	ListPlanes(ctx context.Context) ([]*model.Plane, error)
	GetPlane(ctx context.Context, planeID string) (*model.Plane, error)
	GetAllSeats(ctx context.Context) ([]model.Seat, error)
	GetSeatsForFlight(ctx context.Context, planeID, travelDate, travelTime string) ([]model.Seat, error)
	ResolveSeats(ctx context.Context, planeID string, seatIDs []string) ([]model.Seat, error)
}

type seatService struct {
	repo   repository.SeatRepository
	ledger AvailabilityReader
	cfg    *config.Config
}

func NewSeatService(repo repository.SeatRepository, ledger AvailabilityReader, cfg *config.Config) SeatService {
	return &seatService{
		repo:   repo,
		ledger: ledger,
		cfg:    cfg,
	}
}

func (s *seatService) ListPlanes(ctx context.Context) ([]*model.Plane, error) {
	planes, err := s.repo.FindAllPlanes(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list planes", "error", err)
		return nil, apperrors.Internal("Failed to retrieve planes", err)
	}
	if planes == nil {
		planes = []*model.Plane{}
	}
	return planes, nil
}

func (s *seatService) GetPlane(ctx context.Context, planeID string) (*model.Plane, error) {
	if strings.TrimSpace(planeID) == "" {
		return nil, apperrors.InvalidInput("Plane ID cannot be empty")
	}

	plane, err := s.repo.FindPlaneByID(ctx, planeID)
	if err != nil {
		if errors.Is(err, seatserrors.ErrPlaneNotFound) || errors.Is(err, seatserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Plane", planeID)
		}
		s.cfg.Log.Error("Failed to find plane", "plane_id", planeID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve plane", err)
	}
	return plane, nil
}

func (s *seatService) GetAllSeats(ctx context.Context) ([]model.Seat, error) {
	seats, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list seats", "error", err)
		return nil, apperrors.Internal("Failed to retrieve seats", err)
	}
	if seats == nil {
		seats = []model.Seat{}
	}
	return seats, nil
}

// GetSeatsForFlight returns every seat of the plane with availability taken
// from ledger entries of that exact flight instance. Seats with no entry are
// available.
func (s *seatService) GetSeatsForFlight(ctx context.Context, planeID, travelDate, travelTime string) ([]model.Seat, error) {
	date, err := model.ParseTravelDate(travelDate)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if strings.TrimSpace(travelTime) == "" {
		return nil, apperrors.InvalidInput("travelTime is required")
	}

	if _, err := s.GetPlane(ctx, planeID); err != nil {
		return nil, err
	}

	seats, err := s.repo.FindByPlane(ctx, planeID)
	if err != nil {
		s.cfg.Log.Error("Failed to load seats", "plane_id", planeID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve seats", err)
	}

	flight := model.NewFlightInstance(planeID, date, travelTime)
	entries, err := s.ledger.FindByFlight(ctx, flight)
	if err != nil {
		s.cfg.Log.Error("Failed to load seat availability", "flight", flight.String(), "error", err)
		return nil, apperrors.Internal("Failed to retrieve seat availability", err)
	}

	if seats == nil {
		seats = []model.Seat{}
	}
	return Annotate(seats, entries), nil
}

// ResolveSeats loads the requested seats of the plane. Unknown ids are
// rejected as a whole.
func (s *seatService) ResolveSeats(ctx context.Context, planeID string, seatIDs []string) ([]model.Seat, error) {
	if _, err := s.GetPlane(ctx, planeID); err != nil {
		return nil, err
	}

	seats, err := s.repo.FindByIDs(ctx, planeID, seatIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load requested seats", "plane_id", planeID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve seats", err)
	}
	return seats, nil
}

// Annotate copies ledger state onto seats. Entries for unknown seats are
// ignored.
func Annotate(seats []model.Seat, entries []*model.SeatReservation) []model.Seat {
	bySeat := make(map[string]*model.SeatReservation, len(entries))
	for _, e := range entries {
		bySeat[e.SeatID] = e
	}

	for i := range seats {
		entry, ok := bySeat[seats[i].ID]
		if !ok {
			continue
		}
		seats[i].IsReserved = entry.IsReserved
		seats[i].IsLocked = entry.IsLocked
		if entry.Held() {
			seats[i].UserID = entry.UserID
		}
	}
	return seats
}
