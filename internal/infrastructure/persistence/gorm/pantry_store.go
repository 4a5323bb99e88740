// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// PantryStore implements the pantry store interface using GORM
type PantryStore struct {
	db *gorm.DB
}

// NewPantryStore creates a new pantry store
func NewPantryStore(db *gorm.DB) outbound.PantryStore {
	return &PantryStore{db: db}
}

// GetPantry lists a user's items in insertion order
func (s *PantryStore) GetPantry(ctx context.Context, userID string) ([]pantry.PantryItem, error) {
	var models []PantryItemModel

	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", result.Error)
	}

	items := make([]pantry.PantryItem, 0, len(models))
	for i := range models {
		items = append(items, PantryItemToDomain(&models[i]))
	}
	return items, nil
}

// AddPantryItem inserts an item; the database assigns the id
func (s *PantryStore) AddPantryItem(ctx context.Context, userID, name string, expiry *pantry.Date) (pantry.PantryItem, error) {
	model := &PantryItemModel{
		UserID:     userID,
		ItemName:   name,
		ExpiryDate: dateToTime(expiry),
	}

	if result := s.db.WithContext(ctx).Create(model); result.Error != nil {
		return pantry.PantryItem{}, fmt.Errorf("failed to create pantry item: %w", result.Error)
	}

	return PantryItemToDomain(model), nil
}

// DeletePantryItem reports whether a row owned by userID was removed
func (s *PantryStore) DeletePantryItem(ctx context.Context, userID string, itemID uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&PantryItemModel{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete pantry item: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetProfile returns the stored profile or the default one
func (s *PantryStore) GetProfile(ctx context.Context, userID string) (pantry.TasteProfile, error) {
	var model UserModel

	result := s.db.WithContext(ctx).First(&model, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return pantry.DefaultTasteProfile(), nil
		}
		return pantry.TasteProfile{}, fmt.Errorf("failed to load profile: %w", result.Error)
	}

	return ModelToProfile(&model), nil
}

// UpdateProfile replaces the whole profile in one upsert
func (s *PantryStore) UpdateProfile(ctx context.Context, userID string, profile pantry.TasteProfile) (pantry.TasteProfile, error) {
	model := ProfileToModel(userID, profile)

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"household_size", "dietary_restrictions", "health_goals", "updated_at"}),
	}).Create(model)
	if result.Error != nil {
		return pantry.TasteProfile{}, fmt.Errorf("failed to save profile: %w", result.Error)
	}

	return ModelToProfile(model), nil
}

// AppendShoppingList inserts all entries in one transaction
func (s *PantryStore) AppendShoppingList(ctx context.Context, userID string, entries []pantry.ShoppingListEntry) error {
	if len(entries) == 0 {
		return nil
	}

	models := make([]*ShoppingListEntryModel, 0, len(entries))
	for _, e := range entries {
		models = append(models, ShoppingEntryToModel(userID, e))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models).Error
	})
	if err != nil {
		return fmt.Errorf("failed to append shopping list: %w", err)
	}
	return nil
}

// GetShoppingList returns the entries in append order
func (s *PantryStore) GetShoppingList(ctx context.Context, userID string) ([]pantry.ShoppingListEntry, error) {
	var models []ShoppingListEntryModel

	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list shopping list: %w", result.Error)
	}

	entries := make([]pantry.ShoppingListEntry, 0, len(models))
	for i := range models {
		entries = append(entries, ModelToShoppingEntry(&models[i]))
	}
	return entries, nil
}
