package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"airseat/pkg/logger"
	"airseat/pkg/model"

	"github.com/go-playground/validator/v10"
)

var travelTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidationError describes one failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Validator wraps go-playground/validator with the seat booking tags
// registered: seat_column, travel_date and travel_time.
type Validator struct {
	validate *validator.Validate
}

// New exits the process if a custom tag fails to register.
func New(log *logger.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	tags := map[string]validator.Func{
		"seat_column": validateSeatColumn,
		"travel_date": validateTravelDate,
		"travel_time": validateTravelTime,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return &Validator{validate: v}
}

func validateSeatColumn(fl validator.FieldLevel) bool {
	return model.ColumnIndex(fl.Field().String()) >= 0
}

func validateTravelDate(fl validator.FieldLevel) bool {
	_, err := model.ParseTravelDate(fl.Field().String())
	return err == nil
}

func validateTravelTime(fl validator.FieldLevel) bool {
	return travelTimeRegex.MatchString(fl.Field().String())
}

// Struct validates s and returns ValidationErrors with readable messages.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translate(validationErrs)
	}
	return err
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "alphanum":
			message = fmt.Sprintf("%s must contain only letters and digits", err.Field())
		case "numeric":
			message = fmt.Sprintf("%s must be numeric", err.Field())
		case "seat_column":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(model.SeatColumns, " "))
		case "travel_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "travel_time":
			message = fmt.Sprintf("%s must be in HH:MM format (00:00-23:59)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
