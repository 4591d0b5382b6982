package service

import (
	"context"
	"errors"
	"time"

	autherrors "airseat/internal/auth/errors"
	"airseat/internal/auth/repository"
	"airseat/internal/auth/validator"
	"airseat/pkg/config"
	apperrors "airseat/pkg/errors"
	"airseat/pkg/model"
	"airseat/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}

type authService struct {
	repo      repository.UserRepository
	tokens    *token.Manager
	validator *validator.AuthValidator
	cfg       *config.Config

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, requestValidator *validator.AuthValidator, cfg *config.Config) (AuthService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("airseat-dummy-password"), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &authService{
		repo:      repo,
		tokens:    tokens,
		validator: requestValidator,
		cfg:       cfg,
		dummyHash: dummy,
	}, nil
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if err := s.validator.ValidateRegister(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrDuplicateEmail) {
			s.cfg.Log.Ctx(ctx).Warn("Registration with existing email rejected")
			return nil, apperrors.Conflict("Email is already registered")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Ctx(ctx).Info("User registered", "user_id", user.ID, "role", user.Role)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, autherrors.ErrNotFound) {
			s.cfg.Log.Ctx(ctx).Error("Failed to look up user", "error", err)
			return nil, apperrors.Internal("Failed to log in", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Ctx(ctx).Warn("Login with wrong password", "user_id", user.ID)
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	s.cfg.Log.Ctx(ctx).Info("User logged in", "user_id", user.ID)
	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*model.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.AuthResponse{
		Token:     signed,
		Role:      user.Role,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}, nil
}
