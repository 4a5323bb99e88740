// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/recipe"
)

// Factory builds domain values from a seeded faker so failures are reproducible.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a factory with the given seed
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// UserID returns a numeric user id, the shape the frontend sends.
func (f *Factory) UserID() string {
	return fmt.Sprintf("%d", f.faker.Number(2, 99999))
}

// PantryItems returns n items with distinct names owned by userID.
func (f *Factory) PantryItems(userID string, n int) []pantry.PantryItem {
	items := make([]pantry.PantryItem, 0, n)
	seen := make(map[string]struct{}, n)
	for len(items) < n {
		name := strings.ToLower(f.faker.Vegetable())
		if _, ok := seen[name]; ok {
			name = fmt.Sprintf("%s %d", name, len(items))
		}
		seen[name] = struct{}{}
		items = append(items, pantry.PantryItem{
			ID:       uint64(len(items) + 1),
			ItemName: name,
			UserID:   userID,
		})
	}
	return items
}

// RecipeSummaries returns n search hits with unique ids.
func (f *Factory) RecipeSummaries(n int) []recipe.RecipeSummary {
	hits := make([]recipe.RecipeSummary, 0, n)
	for i := 0; i < n; i++ {
		hits = append(hits, recipe.RecipeSummary{
			ID:    100000 + i,
			Title: f.faker.Dinner(),
			Image: f.faker.URL(),
		})
	}
	return hits
}

// RecipeDetail returns a recipe whose ingredients are the given names. The
// original phrasing prefixes each name with a quantity.
func (f *Factory) RecipeDetail(id int, names ...string) *recipe.RecipeDetail {
	ingredients := make([]recipe.Ingredient, 0, len(names))
	for i, name := range names {
		ingredients = append(ingredients, recipe.Ingredient{
			ID:       i + 1,
			Name:     name,
			Original: fmt.Sprintf("%d cups %s", f.faker.Number(1, 4), name),
		})
	}
	return &recipe.RecipeDetail{
		ID:                  id,
		Title:               f.faker.Dinner(),
		Servings:            f.faker.Number(1, 8),
		ExtendedIngredients: ingredients,
	}
}
