// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"bytes"
	"context"
	"strings"

	"github.com/goccy/go-json"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/recipe"
	"github.com/savvykitchen/savvy/internal/domain/user"
)

// PantryService covers the pantry, profile and shopping list use cases.
type PantryService interface {
	ListPantry(ctx context.Context, userID string) ([]pantry.PantryItem, error)
	AddPantryItem(ctx context.Context, cmd AddPantryItemCommand) (pantry.PantryItem, error)
	DeletePantryItem(ctx context.Context, userID string, itemID uint64) error

	GetProfile(ctx context.Context, userID string) (pantry.TasteProfile, error)
	UpdateProfile(ctx context.Context, userID string, profile pantry.TasteProfile) (pantry.TasteProfile, error)
	GetContext(ctx context.Context, userID string) (*pantry.Context, error)

	GetShoppingList(ctx context.Context, userID string) ([]pantry.ShoppingListEntry, error)
}

// UserService covers account registration and the strict profile update
// that requires an existing account.
type UserService interface {
	Register(ctx context.Context, cmd RegisterUserCommand) (*user.User, error)
	GetUser(ctx context.Context, userID string) (*user.User, error)
	UpdateTasteProfile(ctx context.Context, userID string, profile pantry.TasteProfile) (*user.User, error)
}

// RecommendationService runs the search cascade.
type RecommendationService interface {
	Recommend(ctx context.Context, userID, queryText string) ([]recipe.RecipeSummary, error)
}

// SmartCartService diffs recipes against the pantry.
type SmartCartService interface {
	MissingIngredients(ctx context.Context, userID string, recipeID int) ([]string, error)
	AddMissingToShoppingList(ctx context.Context, userID string, recipeID int) ([]pantry.ShoppingListEntry, error)
}

// RecipeCatalogService serves recipe details.
type RecipeCatalogService interface {
	GetRecipe(ctx context.Context, recipeID int) (*recipe.RecipeDetail, error)
}

// InteractionService records user interactions with recipes.
type InteractionService interface {
	Record(ctx context.Context, cmd RecordInteractionCommand) (*interaction.Interaction, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]*interaction.Interaction, error)
}

// AddPantryItemCommand contains the data for a new pantry item
type AddPantryItemCommand struct {
	UserID     string       `json:"-" validate:"required"`
	ItemName   string       `json:"item_name" validate:"required,max=200"`
	ExpiryDate *pantry.Date `json:"expiry_date"`
}

// RegisterUserCommand is the body of a registration request.
type RegisterUserCommand struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// RecommendCommand is the body of a recommendation request.
type RecommendCommand struct {
	UserID    FlexibleID `json:"user_id" validate:"required"`
	QueryText string     `json:"query_text" validate:"required,max=500"`
}

// RecordInteractionCommand is the body of an interaction request.
type RecordInteractionCommand struct {
	UserID   FlexibleID `json:"user_id" validate:"required"`
	RecipeID int        `json:"recipe_id" validate:"required,gt=0"`
	Type     string     `json:"interaction_type" validate:"required,oneof=view save cook share"`
}

// FlexibleID is a user id that clients may send as a JSON number or string.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

// String returns the id as stored.
func (f FlexibleID) String() string {
	return string(f)
}
