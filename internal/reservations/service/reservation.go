package service

import (
	"context"
	"errors"
	"fmt"

	ledgererrors "airseat/internal/ledger/errors"
	"airseat/internal/ledger/repository"
	"airseat/internal/reservations/validator"
	"airseat/pkg/config"
	apperrors "airseat/pkg/errors"
	"airseat/pkg/model"

	"github.com/google/uuid"
)

// SeatResolver loads the seat records of a plane.
type SeatResolver interface {
	ResolveSeats(ctx context.Context, planeID string, seatIDs []string) ([]model.Seat, error)
}

// BookingCreator records the booking of seats that were just reserved under
// reservationID.
type BookingCreator interface {
	CreateForReservation(ctx context.Context, reservationID, userID string, flight model.FlightInstance, seats []model.Seat) (*model.Booking, error)
}

type ReservationService interface {
	Reserve(ctx context.Context, req *model.SeatRequest) (*model.Booking, error)
	Lock(ctx context.Context, req *model.SeatRequest) (bool, error)
	Unlock(ctx context.Context, req *model.SeatRequest) (bool, error)
	UnlockAll(ctx context.Context, req *model.UnlockAllRequest) (int64, error)
	Unreserve(ctx context.Context, req *model.SeatRequest) (bool, error)
	CancelSeat(ctx context.Context, req *model.CancelSeatRequest) (bool, error)
}

type reservationService struct {
	ledger    repository.SeatReservationRepository
	seats     SeatResolver
	bookings  BookingCreator
	validator *validator.ReservationValidator
	policy    validator.Policy
	cfg       *config.Config
}

func NewReservationService(
	ledger repository.SeatReservationRepository,
	seats SeatResolver,
	bookings BookingCreator,
	requestValidator *validator.ReservationValidator,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		ledger:    ledger,
		seats:     seats,
		bookings:  bookings,
		validator: requestValidator,
		policy:    validator.NewPolicy(),
		cfg:       cfg,
	}
}

// Reserve applies the seat selection policy, claims every seat for the
// requester and records an unpaid booking. The ledger entries and the booking
// share a fresh reservation id, so cancelling the booking later frees exactly
// these claims. Seats claimed before a failure are released again.
func (s *reservationService) Reserve(ctx context.Context, req *model.SeatRequest) (*model.Booking, error) {
	if err := s.validator.ValidateSeatRequest(req); err != nil {
		return nil, err
	}

	flight, err := flightOf(req)
	if err != nil {
		return nil, err
	}

	seats, err := s.seats.ResolveSeats(ctx, req.PlaneID, req.SeatIDs)
	if err != nil {
		return nil, err
	}

	if violation := s.policy.Evaluate(req.SeatIDs, seats, req.UserRole); violation != nil {
		s.cfg.Log.Warn("Seat selection rejected",
			"user_id", req.UserID,
			"flight", flight.String(),
			"kind", violation.Kind,
		)
		return nil, violation.AppError()
	}

	reservationID := uuid.NewString()
	reserve := func(ctx context.Context, flight model.FlightInstance, seatID, holder string) error {
		return s.ledger.Reserve(ctx, flight, seatID, holder, reservationID)
	}
	if err := s.claimAll(ctx, flight, req.SeatIDs, req.UserID, reserve); err != nil {
		return nil, err
	}

	booking, err := s.bookings.CreateForReservation(ctx, reservationID, req.UserID, flight, seats)
	if err != nil {
		s.compensate(ctx, flight, req.SeatIDs, req.UserID)
		return nil, err
	}

	s.cfg.Log.Ctx(ctx).Info("Seats reserved",
		"user_id", req.UserID,
		"flight", flight.String(),
		"seat_ids", req.SeatIDs,
		"booking_id", booking.ID,
	)
	return booking, nil
}

// Lock holds the seats for the requester. The seat count limit and the
// adjacency rules do not apply to locks; every id must still be a seat of the
// plane.
func (s *reservationService) Lock(ctx context.Context, req *model.SeatRequest) (bool, error) {
	if err := s.validator.ValidateSeatRequest(req); err != nil {
		return false, err
	}

	flight, err := flightOf(req)
	if err != nil {
		return false, err
	}

	seats, err := s.seats.ResolveSeats(ctx, req.PlaneID, req.SeatIDs)
	if err != nil {
		return false, err
	}
	if violation := validator.CheckKnownSeats(req.SeatIDs, seats); violation != nil {
		s.cfg.Log.Warn("Seat lock rejected", "user_id", req.UserID, "flight", flight.String(), "kind", violation.Kind)
		return false, violation.AppError()
	}

	if err := s.claimAll(ctx, flight, req.SeatIDs, req.UserID, s.ledger.Lock); err != nil {
		return false, err
	}

	s.cfg.Log.Ctx(ctx).Info("Seats locked",
		"user_id", req.UserID,
		"flight", flight.String(),
		"seat_ids", req.SeatIDs,
	)
	return true, nil
}

// Unlock releases the requester's locks on the given seats. Seats that are not
// locked by the requester are left alone.
func (s *reservationService) Unlock(ctx context.Context, req *model.SeatRequest) (bool, error) {
	if err := s.validator.ValidateSeatRequest(req); err != nil {
		return false, err
	}

	flight, err := flightOf(req)
	if err != nil {
		return false, err
	}

	released := 0
	for _, seatID := range req.SeatIDs {
		ok, err := s.ledger.Unlock(ctx, flight, seatID, req.UserID)
		if err != nil {
			s.cfg.Log.Error("Failed to unlock seat", "seat_id", seatID, "flight", flight.String(), "error", err)
			return false, apperrors.Internal("Failed to unlock seats", err)
		}
		if ok {
			released++
		}
	}

	s.cfg.Log.Ctx(ctx).Info("Seats unlocked",
		"user_id", req.UserID,
		"flight", flight.String(),
		"released", released,
	)
	return true, nil
}

func (s *reservationService) UnlockAll(ctx context.Context, req *model.UnlockAllRequest) (int64, error) {
	if err := s.validator.ValidateUnlockAll(req); err != nil {
		return 0, err
	}

	released, err := s.ledger.UnlockAll(ctx, req.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to unlock all seats", "user_id", req.UserID, "error", err)
		return 0, apperrors.Internal("Failed to unlock seats", err)
	}

	s.cfg.Log.Ctx(ctx).Info("All seats unlocked", "user_id", req.UserID, "released", released)
	return released, nil
}

// Unreserve is the staff override that frees reserved seats whoever holds
// them.
func (s *reservationService) Unreserve(ctx context.Context, req *model.SeatRequest) (bool, error) {
	if err := s.validator.ValidateSeatRequest(req); err != nil {
		return false, err
	}

	if !model.IsPrivilegedRole(req.UserRole) {
		s.cfg.Log.Warn("Unreserve denied", "user_id", req.UserID, "role", req.UserRole)
		return false, apperrors.Forbidden("Only staff or management can unreserve seats")
	}

	flight, err := flightOf(req)
	if err != nil {
		return false, err
	}

	released, err := s.ledger.Unreserve(ctx, flight, req.SeatIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to unreserve seats", "flight", flight.String(), "error", err)
		return false, apperrors.Internal("Failed to unreserve seats", err)
	}

	s.cfg.Log.Ctx(ctx).Info("Seats unreserved",
		"staff_id", req.UserID,
		"flight", flight.String(),
		"seat_ids", req.SeatIDs,
		"released", released,
	)
	return true, nil
}

// CancelSeat clears one reserved seat of the plane. It reports false when no
// reservation exists for the seat.
func (s *reservationService) CancelSeat(ctx context.Context, req *model.CancelSeatRequest) (bool, error) {
	if err := s.validator.ValidateCancelSeat(req); err != nil {
		return false, err
	}

	cancelled, err := s.ledger.CancelReserved(ctx, req.PlaneID, req.SeatID)
	if err != nil {
		s.cfg.Log.Error("Failed to cancel seat", "plane_id", req.PlaneID, "seat_id", req.SeatID, "error", err)
		return false, apperrors.Internal("Failed to cancel seat", err)
	}
	if !cancelled {
		s.cfg.Log.Warn("No reservation to cancel", "plane_id", req.PlaneID, "seat_id", req.SeatID)
		return false, nil
	}

	s.cfg.Log.Ctx(ctx).Info("Seat reservation cancelled",
		"plane_id", req.PlaneID,
		"seat_id", req.SeatID,
		"user_id", req.UserID,
	)
	return true, nil
}

type claimFunc func(ctx context.Context, flight model.FlightInstance, seatID, holder string) error

func (s *reservationService) claimAll(ctx context.Context, flight model.FlightInstance, seatIDs []string, holder string, claim claimFunc) error {
	for i, seatID := range seatIDs {
		err := claim(ctx, flight, seatID, holder)
		if err == nil {
			continue
		}

		s.compensate(ctx, flight, seatIDs[:i], holder)

		if errors.Is(err, ledgererrors.ErrSeatUnavailable) {
			s.cfg.Log.Warn("Seat unavailable",
				"seat_id", seatID,
				"user_id", holder,
				"flight", flight.String(),
			)
			return apperrors.Conflict(fmt.Sprintf("Seat %s is no longer available", seatID)).
				WithDetails(map[string]any{"seatId": seatID})
		}
		s.cfg.Log.Error("Failed to claim seat", "seat_id", seatID, "flight", flight.String(), "error", err)
		return apperrors.Internal("Failed to update seat availability", err)
	}
	return nil
}

// compensate releases seats acquired by a request that failed part way,
// ignoring cancellation of the request context.
func (s *reservationService) compensate(ctx context.Context, flight model.FlightInstance, seatIDs []string, holder string) {
	if len(seatIDs) == 0 {
		return
	}

	released, err := s.ledger.Release(context.WithoutCancel(ctx), flight, seatIDs, holder)
	if err != nil {
		s.cfg.Log.Error("Failed to release seats after partial failure",
			"flight", flight.String(),
			"seat_ids", seatIDs,
			"user_id", holder,
			"error", err,
		)
		return
	}
	s.cfg.Log.Warn("Released seats after partial failure",
		"flight", flight.String(),
		"released", released,
		"user_id", holder,
	)
}

func flightOf(req *model.SeatRequest) (model.FlightInstance, error) {
	date, err := model.ParseTravelDate(req.TravelDate)
	if err != nil {
		return model.FlightInstance{}, apperrors.InvalidInput(err.Error())
	}
	return model.NewFlightInstance(req.PlaneID, date, req.TravelTime), nil
}
