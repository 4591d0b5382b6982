package service

import (
	"context"
	"errors"
	"math"
	"time"

	bookingserrors "airseat/internal/bookings/errors"
	"airseat/internal/bookings/events"
	"airseat/internal/bookings/repository"
	"airseat/internal/bookings/validator"
	"airseat/pkg/config"
	apperrors "airseat/pkg/errors"
	"airseat/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// SeatReleaser frees the ledger entries a reservation still holds on a flight
// instance.
type SeatReleaser interface {
	ReleaseReservation(ctx context.Context, flight model.FlightInstance, seatIDs []string, reservationID string) (int64, error)
}

type BookingService interface {
	CreateForReservation(ctx context.Context, reservationID, userID string, flight model.FlightInstance, seats []model.Seat) (*model.Booking, error)
	Pay(ctx context.Context, req *model.PaymentRequest) (bool, error)
	ConfirmPayment(ctx context.Context, req *model.ConfirmPaymentRequest) (bool, error)
	Cancel(ctx context.Context, req *model.CancelBookingRequest) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	seats     SeatReleaser
	validator *validator.BookingValidator
	events    events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	seats SeatReleaser,
	requestValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		seats:     seats,
		validator: requestValidator,
		events:    publisher,
		cfg:       cfg,
	}
}

// CreateForReservation records an unpaid booking for seats the caller has
// just reserved under reservationID. The price is the configured unit price
// per seat.
func (s *bookingService) CreateForReservation(ctx context.Context, reservationID, userID string, flight model.FlightInstance, seats []model.Seat) (*model.Booking, error) {
	if len(seats) == 0 {
		return nil, apperrors.InvalidInput("A booking needs at least one seat")
	}

	snapshot := make([]model.Seat, len(seats))
	for i, seat := range seats {
		snapshot[i] = model.Seat{ID: seat.ID, PlaneID: seat.PlaneID, Row: seat.Row, Column: seat.Column}
	}

	booking := &model.Booking{
		UserID:      userID,
		PlaneID:     flight.PlaneID,
		Seats:       snapshot,
		Passengers:  []model.Passenger{},
		TotalPrice:  float64(len(seats)) * s.cfg.SeatUnitPrice,
		BookingDate: time.Now().UTC().Truncate(time.Millisecond),
		TravelDate:  flight.TravelDate,
		TravelTime:  flight.TravelTime,
		IsPaid:      false,

		ReservationID: reservationID,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to create booking", "user_id", userID, "flight", flight.String(), "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Ctx(ctx).Info("Booking created",
		"id", booking.ID,
		"user_id", userID,
		"flight", flight.String(),
		"seats", len(seats),
		"total_price", booking.TotalPrice,
	)
	s.publish(ctx, events.TypeBookingCreated, booking)
	return booking, nil
}

// Pay simulates the payment provider and then confirms the booking with the
// passenger manifest.
func (s *bookingService) Pay(ctx context.Context, req *model.PaymentRequest) (bool, error) {
	if err := s.validator.ValidatePayment(req); err != nil {
		return false, err
	}

	booking, err := s.find(ctx, req.BookingID)
	if err != nil {
		return false, err
	}

	if booking.UserID != req.UserID {
		s.cfg.Log.Ctx(ctx).Warn("Payment for another user's booking rejected", "id", booking.ID, "user_id", req.UserID)
		return false, apperrors.Forbidden("Booking belongs to another user")
	}
	if booking.PlaneID != req.PlaneID {
		return false, apperrors.InvalidInput("Payment plane does not match the booking")
	}
	if req.TotalPrice > 0 && !samePrice(req.TotalPrice, booking.TotalPrice) {
		s.cfg.Log.Ctx(ctx).Warn("Payment amount mismatch", "id", booking.ID, "expected", booking.TotalPrice, "got", req.TotalPrice)
		return false, apperrors.InvalidInput("Payment amount does not match the booking total").
			WithDetails(map[string]any{"expected": booking.TotalPrice})
	}
	if booking.IsPaid {
		return false, apperrors.Conflict("Booking is already paid")
	}

	if err := s.processPayment(ctx); err != nil {
		return false, err
	}

	return s.markPaid(ctx, booking.ID, req.Passengers)
}

// processPayment waits PaymentDelay, giving up when ctx ends first.
func (s *bookingService) processPayment(ctx context.Context) error {
	if s.cfg.PaymentDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(s.cfg.PaymentDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		s.cfg.Log.Ctx(ctx).Warn("Payment processing interrupted", "error", ctx.Err())
		return apperrors.Timeout("Payment processing was interrupted")
	}
}

// ConfirmPayment marks the booking paid. When the caller is known through
// req.UserID the booking must be theirs.
func (s *bookingService) ConfirmPayment(ctx context.Context, req *model.ConfirmPaymentRequest) (bool, error) {
	if err := s.validator.ValidateConfirmPayment(req); err != nil {
		return false, err
	}

	if req.UserID != "" {
		booking, err := s.find(ctx, req.BookingID)
		if err != nil {
			return false, err
		}
		if booking.UserID != req.UserID {
			s.cfg.Log.Ctx(ctx).Warn("Payment confirmation for another user's booking rejected", "id", booking.ID, "user_id", req.UserID)
			return false, apperrors.Forbidden("Booking belongs to another user")
		}
	}
	return s.markPaid(ctx, req.BookingID, req.Passengers)
}

func (s *bookingService) markPaid(ctx context.Context, id string, passengers []model.Passenger) (bool, error) {
	ok, err := s.repo.MarkPaid(ctx, id, passengers)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return false, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to confirm payment", "id", id, "error", err)
		return false, apperrors.Internal("Failed to confirm payment", err)
	}
	if !ok {
		s.cfg.Log.Ctx(ctx).Warn("Payment confirmation modified nothing", "id", id)
		return false, nil
	}

	s.cfg.Log.Ctx(ctx).Info("Booking paid", "id", id, "passengers", len(passengers))

	if booking, err := s.repo.FindByID(ctx, id); err == nil {
		s.publish(ctx, events.TypeBookingPaid, booking)
	} else {
		s.cfg.Log.Ctx(ctx).Warn("Failed to reload paid booking for event", "id", id, "error", err)
	}
	return true, nil
}

// Cancel frees the seats still held by the booking's reservation and deletes
// the booking in one transaction. A booking that is absent or owned by
// someone else yields false.
func (s *bookingService) Cancel(ctx context.Context, req *model.CancelBookingRequest) (bool, error) {
	if err := s.validator.ValidateCancel(req); err != nil {
		return false, err
	}

	booking, err := s.repo.FindByID(ctx, req.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return false, nil
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return false, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to load booking for cancellation", "id", req.BookingID, "error", err)
		return false, apperrors.Internal("Failed to cancel booking", err)
	}
	if booking.UserID != req.UserID {
		s.cfg.Log.Ctx(ctx).Warn("Cancellation of another user's booking ignored", "id", booking.ID, "user_id", req.UserID)
		return false, nil
	}

	var deleted bool
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		released, err := s.seats.ReleaseReservation(sessCtx, booking.FlightInstance(), booking.SeatIDs(), booking.ReservationID)
		if err != nil {
			return err
		}

		deleted, err = s.repo.Delete(sessCtx, booking.ID, booking.UserID)
		if err != nil {
			return err
		}

		s.cfg.Log.Ctx(ctx).Debug("Booking seats released", "id", booking.ID, "released", released)
		return nil
	})
	if err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to cancel booking", "id", booking.ID, "error", err)
		return false, apperrors.Internal("Failed to cancel booking", err)
	}
	if !deleted {
		return false, nil
	}

	s.cfg.Log.Ctx(ctx).Info("Booking cancelled", "id", booking.ID, "user_id", booking.UserID, "was_paid", booking.IsPaid)
	s.publish(ctx, events.TypeBookingCancelled, booking)
	return true, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("userId is required")
	}

	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to list bookings", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	return s.find(ctx, id)
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if err := s.events.Publish(ctx, eventType, booking); err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to publish booking event", "event_type", eventType, "id", booking.ID, "error", err)
	}
}

func samePrice(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
