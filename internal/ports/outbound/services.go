package outbound

import (
	"context"

	"github.com/savvykitchen/savvy/internal/domain/recipe"
)

// RecipeAPI is the third-party recipe search service. Implementations make
// exactly one upstream call per method and never retry.
type RecipeAPI interface {
	// GetRecipeInformation fails with an UPSTREAM_UNAVAILABLE AppError on
	// network errors and non-2xx statuses (RECIPE_NOT_FOUND for 404).
	GetRecipeInformation(ctx context.Context, recipeID int) (*recipe.RecipeDetail, error)

	// SearchRecipes returns an empty slice, not an error, when nothing matches.
	SearchRecipes(ctx context.Context, params recipe.SearchParams) ([]recipe.RecipeSummary, error)
}

// GenerateOptions bounds a single text generation.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// TextGenerator turns a prompt into text. It is treated as an unreliable
// pure function; callers never inspect model internals.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Name() string
}
