// Package pantry provides the application layer for pantry, taste profile
// and shopping list management
package pantry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/ports/inbound"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

// DefaultRegion is reported in user contexts when none is configured.
const DefaultRegion = "Midwest"

// Service implements the pantry use cases
type Service struct {
	store     outbound.PantryStore
	users     outbound.UserRepository
	validator *validator.Validate
	region    string
	logger    *zap.Logger
}

// NewService creates a new pantry service
func NewService(store outbound.PantryStore, users outbound.UserRepository, region string, logger *zap.Logger) *Service {
	if region == "" {
		region = DefaultRegion
	}
	return &Service{
		store:     store,
		users:     users,
		validator: validator.New(),
		region:    region,
		logger:    logger.Named("pantry-service"),
	}
}

// ListPantry returns the user's items in insertion order
func (s *Service) ListPantry(ctx context.Context, userID string) ([]pantry.PantryItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	items, err := s.store.GetPantry(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pantry: %w", err)
	}
	if items == nil {
		items = []pantry.PantryItem{}
	}
	return items, nil
}

// AddPantryItem validates and stores a new item
func (s *Service) AddPantryItem(ctx context.Context, cmd inbound.AddPantryItemCommand) (pantry.PantryItem, error) {
	cmd.ItemName = strings.TrimSpace(cmd.ItemName)
	if err := s.validator.Struct(cmd); err != nil {
		return pantry.PantryItem{}, apperrors.FromValidator(err)
	}

	item, err := s.store.AddPantryItem(ctx, cmd.UserID, cmd.ItemName, cmd.ExpiryDate)
	if err != nil {
		return pantry.PantryItem{}, fmt.Errorf("failed to add pantry item: %w", err)
	}

	s.logger.Info("Pantry item added",
		zap.String("user_id", cmd.UserID),
		zap.Uint64("item_id", item.ID),
		zap.String("item_name", item.ItemName))

	return item, nil
}

// DeletePantryItem removes one of the user's items. Items owned by other
// users are reported as not found.
func (s *Service) DeletePantryItem(ctx context.Context, userID string, itemID uint64) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	removed, err := s.store.DeletePantryItem(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	if !removed {
		return apperrors.NewPantryItemNotFoundError(itemID)
	}

	s.logger.Info("Pantry item deleted",
		zap.String("user_id", userID),
		zap.Uint64("item_id", itemID))

	return nil
}

// GetProfile returns the saved profile or the default one
func (s *Service) GetProfile(ctx context.Context, userID string) (pantry.TasteProfile, error) {
	if err := requireUser(userID); err != nil {
		return pantry.TasteProfile{}, err
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return pantry.TasteProfile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile.Normalize(), nil
}

// UpdateProfile replaces the user's profile
func (s *Service) UpdateProfile(ctx context.Context, userID string, profile pantry.TasteProfile) (pantry.TasteProfile, error) {
	if err := requireUser(userID); err != nil {
		return pantry.TasteProfile{}, err
	}

	profile = profile.Normalize()
	if err := s.validator.Struct(profile); err != nil {
		return pantry.TasteProfile{}, apperrors.FromValidator(err)
	}

	saved, err := s.store.UpdateProfile(ctx, userID, profile)
	if err != nil {
		return pantry.TasteProfile{}, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated",
		zap.String("user_id", userID),
		zap.Int("household_size", saved.HouseholdSize),
		zap.Strings("dietary_restrictions", saved.DietaryRestrictions))

	return saved, nil
}

// GetContext bundles the user's pantry and profile. Unknown users are not
// found, unlike GetProfile which reports the default.
func (s *Service) GetContext(ctx context.Context, userID string) (*pantry.Context, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	u, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	items, err := s.ListPantry(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &pantry.Context{
		Region:  s.region,
		Pantry:  items,
		Profile: u.TasteProfile.Normalize(),
	}, nil
}

// GetShoppingList returns the user's list in insertion order
func (s *Service) GetShoppingList(ctx context.Context, userID string) ([]pantry.ShoppingListEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	entries, err := s.store.GetShoppingList(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	if entries == nil {
		entries = []pantry.ShoppingListEntry{}
	}
	return entries, nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewValidationError("user_id is required")
	}
	return nil
}
