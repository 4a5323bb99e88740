// Package recipe provides the application layer for recipe lookups.
// Recipe details are cached; searches always go to the upstream API.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/domain/recipe"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

// DefaultDetailTTL is how long a recipe detail stays cached.
const DefaultDetailTTL = time.Hour

// Service implements the recipe catalog use cases. It also satisfies
// outbound.RecipeAPI so other services share its detail cache.
type Service struct {
	api    outbound.RecipeAPI
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a new recipe service. cache may be nil.
func NewService(api outbound.RecipeAPI, cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultDetailTTL
	}
	return &Service{
		api:    api,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("recipe-service"),
	}
}

// GetRecipe returns a recipe detail
func (s *Service) GetRecipe(ctx context.Context, recipeID int) (*recipe.RecipeDetail, error) {
	if recipeID <= 0 {
		return nil, apperrors.NewValidationError("recipe_id must be a positive integer")
	}
	return s.GetRecipeInformation(ctx, recipeID)
}

// GetRecipeInformation serves the detail from cache, falling back to the API
func (s *Service) GetRecipeInformation(ctx context.Context, recipeID int) (*recipe.RecipeDetail, error) {
	// Try cache first
	if cached, err := s.getCachedRecipe(ctx, recipeID); err == nil {
		return cached, nil
	}

	detail, err := s.api.GetRecipeInformation(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	s.cacheRecipe(ctx, recipeID, detail)
	return detail, nil
}

// SearchRecipes is passed through uncached
func (s *Service) SearchRecipes(ctx context.Context, params recipe.SearchParams) ([]recipe.RecipeSummary, error) {
	return s.api.SearchRecipes(ctx, params)
}

func cacheKey(recipeID int) string {
	return fmt.Sprintf("recipe:%d", recipeID)
}

// getCachedRecipe retrieves a recipe from cache
func (s *Service) getCachedRecipe(ctx context.Context, recipeID int) (*recipe.RecipeDetail, error) {
	if s.cache == nil {
		return nil, outbound.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, cacheKey(recipeID))
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Recipe cache read failed", zap.Int("recipe_id", recipeID), zap.Error(err))
		}
		return nil, err
	}

	var detail recipe.RecipeDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		s.logger.Warn("Dropping undecodable cached recipe", zap.Int("recipe_id", recipeID), zap.Error(err))
		_ = s.cache.Delete(ctx, cacheKey(recipeID))
		return nil, err
	}
	detail.Raw = data

	s.logger.Debug("Recipe cache hit", zap.Int("recipe_id", recipeID))
	return &detail, nil
}

// cacheRecipe caches the upstream body under the requested id, which the
// body's own id field may not match
func (s *Service) cacheRecipe(ctx context.Context, recipeID int, detail *recipe.RecipeDetail) {
	if s.cache == nil {
		return
	}

	data := detail.Raw
	if len(data) == 0 {
		var err error
		if data, err = json.Marshal(detail); err != nil {
			return
		}
	}

	if err := s.cache.Set(ctx, cacheKey(recipeID), data, s.ttl); err != nil {
		s.logger.Warn("Recipe cache write failed", zap.Int("recipe_id", recipeID), zap.Error(err))
	}
}
