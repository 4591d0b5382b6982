package validator

import (
	"errors"
	"strings"

	apperrors "airseat/pkg/errors"
	"airseat/pkg/logger"
	"airseat/pkg/model"
	"airseat/pkg/validation"
)

const maxPasswordBytes = 72

type AuthValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewAuthValidator(log *logger.Logger) *AuthValidator {
	return &AuthValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

// ValidateRegister normalizes req in place. Emails are compared
// case-insensitively and an empty role registers an ordinary user.
func (v *AuthValidator) ValidateRegister(req *model.RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if err := v.check(req); err != nil {
		return err
	}
	// bcrypt reads at most 72 bytes; multi-byte passwords can pass the rune count.
	if len(req.Password) > maxPasswordBytes {
		return apperrors.Validation("Invalid authentication request", map[string]any{
			"errors": validation.ValidationErrors{{Field: "password", Message: "password must be at most 72 bytes"}},
		})
	}
	return nil
}

func (v *AuthValidator) ValidateLogin(req *model.LoginRequest) error {
	req.Email = NormalizeEmail(req.Email)
	return v.check(req)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (v *AuthValidator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		v.logger.Warn("Auth request rejected", "errors", validationErrs.Error())
		return apperrors.Validation("Invalid authentication request", map[string]any{"errors": validationErrs})
	}
	return apperrors.Internal("Failed to validate request", err)
}
