// Package user provides the application layer for account registration
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/user"
	"github.com/savvykitchen/savvy/internal/ports/inbound"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

// Service implements the account use cases
type Service struct {
	users     outbound.UserRepository
	store     outbound.PantryStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewService creates a new user service
func NewService(users outbound.UserRepository, store outbound.PantryStore, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		store:     store,
		validator: validator.New(),
		logger:    logger.Named("user-service"),
	}
}

var _ inbound.UserService = (*Service)(nil)

// Register creates an account with the default taste profile
func (s *Service) Register(ctx context.Context, cmd inbound.RegisterUserCommand) (*user.User, error) {
	cmd.Email = user.NormalizeEmail(cmd.Email)
	if err := s.validator.Struct(cmd); err != nil {
		return nil, apperrors.FromValidator(err)
	}

	// Check if user already exists
	existing, err := s.users.FindUserByEmail(ctx, cmd.Email)
	if err == nil && existing != nil {
		return nil, apperrors.NewEmailTakenError(cmd.Email)
	}
	if err != nil && !errors.Is(err, outbound.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	newUser := user.New(cmd.Email)
	if err := s.users.CreateUser(ctx, newUser); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, outbound.ErrEmailTaken) {
			return nil, apperrors.NewEmailTakenError(cmd.Email)
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", newUser.ID))
	return newUser, nil
}

// GetUser retrieves an account by id
func (s *Service) GetUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.TasteProfile = u.TasteProfile.Normalize()
	return u, nil
}

// UpdateTasteProfile replaces the profile of an existing account
func (s *Service) UpdateTasteProfile(ctx context.Context, userID string, profile pantry.TasteProfile) (*user.User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile = profile.Normalize()
	if err := s.validator.Struct(profile); err != nil {
		return nil, apperrors.FromValidator(err)
	}

	saved, err := s.store.UpdateProfile(ctx, userID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to update taste profile: %w", err)
	}
	u.TasteProfile = saved

	s.logger.Info("Taste profile updated",
		zap.String("user_id", userID),
		zap.Int("household_size", saved.HouseholdSize))

	return u, nil
}
