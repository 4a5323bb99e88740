package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// InteractionRepository implements the interaction log using GORM
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *gorm.DB) outbound.InteractionRepository {
	return &InteractionRepository{db: db}
}

// Append inserts an interaction
func (r *InteractionRepository) Append(ctx context.Context, in *interaction.Interaction) error {
	model := InteractionToModel(in)
	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return fmt.Errorf("failed to create interaction: %w", result.Error)
	}
	in.ID = model.ID
	return nil
}

// FindByUserID lists the newest interactions first
func (r *InteractionRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]*interaction.Interaction, error) {
	var models []InteractionModel

	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&models); result.Error != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", result.Error)
	}

	out := make([]*interaction.Interaction, 0, len(models))
	for i := range models {
		out = append(out, ModelToInteraction(&models[i]))
	}
	return out, nil
}
