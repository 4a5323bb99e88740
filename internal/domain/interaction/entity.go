// Package interaction records what users do with recommended recipes.
package interaction

import (
	"time"

	"github.com/google/uuid"
)

// Type is the kind of interaction.
type Type string

const (
	TypeView  Type = "view"
	TypeSave  Type = "save"
	TypeCook  Type = "cook"
	TypeShare Type = "share"
)

// EventRecorded is the topic interactions are published on.
const EventRecorded = "interactions.recorded"

// Interaction is an append-only log entry.
type Interaction struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	RecipeID  int       `json:"recipe_id" validate:"required,gt=0"`
	Type      Type      `json:"interaction_type" validate:"required,oneof=view save cook share"`
	CreatedAt time.Time `json:"created_at"`
}

// New stamps an interaction with a fresh id and the current time.
func New(userID string, recipeID int, kind Type) *Interaction {
	return &Interaction{
		ID:        uuid.New(),
		UserID:    userID,
		RecipeID:  recipeID,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}
}
