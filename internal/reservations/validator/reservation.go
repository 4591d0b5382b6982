package validator

import (
	"errors"
	"strings"

	apperrors "airseat/pkg/errors"
	"airseat/pkg/logger"
	"airseat/pkg/model"
	"airseat/pkg/validation"
)

// ReservationValidator checks reservation request payloads. Seat selection
// policy is applied separately by Policy once the seats are loaded.
type ReservationValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	return &ReservationValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

// ValidateSeatRequest normalizes and validates req in place. An empty role
// is treated as an ordinary user.
func (v *ReservationValidator) ValidateSeatRequest(req *model.SeatRequest) error {
	req.PlaneID = strings.TrimSpace(req.PlaneID)
	req.UserID = strings.TrimSpace(req.UserID)
	req.UserRole = strings.ToLower(strings.TrimSpace(req.UserRole))
	req.TravelDate = strings.TrimSpace(req.TravelDate)
	req.TravelTime = strings.TrimSpace(req.TravelTime)
	for i := range req.SeatIDs {
		req.SeatIDs[i] = strings.TrimSpace(req.SeatIDs[i])
	}
	if req.UserRole == "" {
		req.UserRole = model.RoleUser
	}

	return v.check(req)
}

func (v *ReservationValidator) ValidateUnlockAll(req *model.UnlockAllRequest) error {
	req.UserID = strings.TrimSpace(req.UserID)
	return v.check(req)
}

func (v *ReservationValidator) ValidateCancelSeat(req *model.CancelSeatRequest) error {
	req.PlaneID = strings.TrimSpace(req.PlaneID)
	req.SeatID = strings.TrimSpace(req.SeatID)
	req.UserID = strings.TrimSpace(req.UserID)
	return v.check(req)
}

func (v *ReservationValidator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		v.logger.Warn("Reservation request rejected", "errors", validationErrs.Error())
		return apperrors.Validation("Invalid reservation request", map[string]any{"errors": validationErrs})
	}
	return apperrors.Internal("Failed to validate request", err)
}
