// Package cart diffs a recipe's ingredients against the user's pantry and
// turns the gap into shopping list entries.
package cart

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/recipe"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// Service implements the smart cart use cases
type Service struct {
	store   outbound.PantryStore
	recipes outbound.RecipeAPI
	catalog pantry.SubstitutionCatalog
	logger  *zap.Logger
}

// NewService creates a new smart cart service
func NewService(
	store outbound.PantryStore,
	recipes outbound.RecipeAPI,
	catalog pantry.SubstitutionCatalog,
	logger *zap.Logger,
) *Service {
	if catalog == nil {
		catalog = pantry.SubstitutionCatalog{}
	}
	return &Service{
		store:   store,
		recipes: recipes,
		catalog: catalog,
		logger:  logger.Named("cart-service"),
	}
}

// MissingIngredients lists the recipe ingredients absent from the pantry,
// capitalized for display, once each, in recipe order.
func (s *Service) MissingIngredients(ctx context.Context, userID string, recipeID int) ([]string, error) {
	detail, have, err := s.load(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	missing := Missing(detail.IngredientNames(), have)
	for i, name := range missing {
		missing[i] = pantry.Capitalize(name)
	}

	s.logger.Info("Computed missing ingredients",
		zap.String("user_id", userID),
		zap.Int("recipe_id", recipeID),
		zap.Int("missing", len(missing)))

	return missing, nil
}

// AddMissingToShoppingList appends the missing ingredients to the user's
// shopping list using the recipe's original phrasing, and returns what was
// appended.
func (s *Service) AddMissingToShoppingList(ctx context.Context, userID string, recipeID int) ([]pantry.ShoppingListEntry, error) {
	detail, have, err := s.load(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	entries := s.Entries(detail.ExtendedIngredients, have)
	if len(entries) == 0 {
		return entries, nil
	}

	if err := s.store.AppendShoppingList(ctx, userID, entries); err != nil {
		return nil, fmt.Errorf("failed to append shopping list: %w", err)
	}

	s.logger.Info("Added missing ingredients to shopping list",
		zap.String("user_id", userID),
		zap.Int("recipe_id", recipeID),
		zap.Int("added", len(entries)))

	return entries, nil
}

// Entries builds shopping list entries for the ingredients whose name is not
// in have. Entries carry the original phrasing and, when the catalog knows
// the ingredient name, a substitution.
func (s *Service) Entries(ingredients []recipe.Ingredient, have map[string]struct{}) []pantry.ShoppingListEntry {
	entries := make([]pantry.ShoppingListEntry, 0, len(ingredients))
	seen := make(map[string]struct{}, len(ingredients))

	for _, ing := range ingredients {
		key := pantry.NormalizeName(ing.Name)
		if key == "" {
			continue
		}
		if _, ok := have[key]; ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		name := strings.TrimSpace(ing.Original)
		if name == "" {
			name = strings.TrimSpace(ing.Name)
		}

		entry := pantry.ShoppingListEntry{Name: name}
		if sub, ok := s.catalog.Lookup(key); ok {
			entry.Substitution = sub
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *Service) load(ctx context.Context, userID string, recipeID int) (*recipe.RecipeDetail, map[string]struct{}, error) {
	detail, err := s.recipes.GetRecipeInformation(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.GetPantry(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pantry: %w", err)
	}

	return detail, pantry.NameSet(items), nil
}

// Missing returns the lowercase names not in have, deduplicated, in the
// order they first appear.
func Missing(names []string, have map[string]struct{}) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := pantry.NormalizeName(name)
		if key == "" {
			continue
		}
		if _, ok := have[key]; ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
