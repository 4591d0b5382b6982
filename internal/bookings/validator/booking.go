package validator

import (
	"errors"
	"strings"

	apperrors "airseat/pkg/errors"
	"airseat/pkg/logger"
	"airseat/pkg/model"
	"airseat/pkg/validation"
)

type BookingValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *BookingValidator) ValidatePayment(req *model.PaymentRequest) error {
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.PlaneID = strings.TrimSpace(req.PlaneID)
	req.UserID = strings.TrimSpace(req.UserID)
	req.TravelDate = strings.TrimSpace(req.TravelDate)
	req.TravelTime = strings.TrimSpace(req.TravelTime)
	trimPassengers(req.Passengers)
	return v.check(req)
}

func (v *BookingValidator) ValidateConfirmPayment(req *model.ConfirmPaymentRequest) error {
	req.BookingID = strings.TrimSpace(req.BookingID)
	trimPassengers(req.Passengers)
	return v.check(req)
}

func (v *BookingValidator) ValidateCancel(req *model.CancelBookingRequest) error {
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.UserID = strings.TrimSpace(req.UserID)
	return v.check(req)
}

func trimPassengers(passengers []model.Passenger) {
	for i := range passengers {
		passengers[i].Name = strings.TrimSpace(passengers[i].Name)
		passengers[i].PassportNumber = strings.ToUpper(strings.TrimSpace(passengers[i].PassportNumber))
	}
}

func (v *BookingValidator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		v.logger.Warn("Booking request rejected", "errors", validationErrs.Error())
		return apperrors.Validation("Invalid booking request", map[string]any{"errors": validationErrs})
	}
	return apperrors.Internal("Failed to validate request", err)
}
