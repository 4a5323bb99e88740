package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/savvykitchen/savvy/internal/domain/recipe"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
	"github.com/savvykitchen/savvy/test/testutils"
)

const rawDetail = `{"id":42,"title":"Shakshuka","extendedIngredients":[{"id":1,"name":"eggs","original":"4 eggs"}],"winePairing":{}}`

func TestGetRecipe_CacheMissFetchesAndStores(t *testing.T) {
	api := &testutils.MockRecipeAPI{}
	cache := &testutils.MockCacheRepository{}
	detail := &recipe.RecipeDetail{ID: 42, Title: "Shakshuka", Raw: []byte(rawDetail)}

	cache.On("Get", mock.Anything, "recipe:42").Return(nil, outbound.ErrCacheMiss).Once()
	api.On("GetRecipeInformation", mock.Anything, 42).Return(detail, nil).Once()
	cache.On("Set", mock.Anything, "recipe:42", []byte(rawDetail), 30*time.Minute).Return(nil).Once()

	service := NewService(api, cache, 30*time.Minute, zaptest.NewLogger(t))
	got, err := service.GetRecipe(context.Background(), 42)

	require.NoError(t, err)
	assert.Same(t, detail, got)
	api.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestGetRecipe_CachesUnderRequestedID(t *testing.T) {
	api := &testutils.MockRecipeAPI{}
	cache := &testutils.MockCacheRepository{}
	// the upstream body carries no id
	detail := &recipe.RecipeDetail{Title: "Shakshuka", Raw: []byte(`{"title":"Shakshuka"}`)}

	cache.On("Get", mock.Anything, "recipe:42").Return(nil, outbound.ErrCacheMiss).Once()
	api.On("GetRecipeInformation", mock.Anything, 42).Return(detail, nil).Once()
	cache.On("Set", mock.Anything, "recipe:42", mock.Anything, DefaultDetailTTL).Return(nil).Once()

	service := NewService(api, cache, 0, zaptest.NewLogger(t))
	_, err := service.GetRecipe(context.Background(), 42)

	require.NoError(t, err)
	cache.AssertExpectations(t)
	cache.AssertNotCalled(t, "Set", mock.Anything, "recipe:0", mock.Anything, mock.Anything)
}

func TestGetRecipe_CacheHitSkipsAPI(t *testing.T) {
	api := &testutils.MockRecipeAPI{}
	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, "recipe:42").Return([]byte(rawDetail), nil)

	service := NewService(api, cache, 0, zaptest.NewLogger(t))
	got, err := service.GetRecipe(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "Shakshuka", got.Title)
	assert.Equal(t, []string{"eggs"}, got.IngredientNames())
	assert.JSONEq(t, rawDetail, string(got.Raw))
	api.AssertNotCalled(t, "GetRecipeInformation", mock.Anything, mock.Anything)
}

func TestGetRecipe_CacheErrorFallsThrough(t *testing.T) {
	api := &testutils.MockRecipeAPI{}
	cache := &testutils.MockCacheRepository{}
	detail := &recipe.RecipeDetail{ID: 7}

	cache.On("Get", mock.Anything, "recipe:7").Return(nil, errors.New("redis down"))
	cache.On("Set", mock.Anything, "recipe:7", mock.Anything, DefaultDetailTTL).Return(errors.New("redis down"))
	api.On("GetRecipeInformation", mock.Anything, 7).Return(detail, nil)

	service := NewService(api, cache, 0, zaptest.NewLogger(t))
	got, err := service.GetRecipe(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
}

func TestGetRecipe_UpstreamErrorIsNotCached(t *testing.T) {
	api := &testutils.MockRecipeAPI{}
	api.On("GetRecipeInformation", mock.Anything, 404).Return(nil, apperrors.NewRecipeNotFoundError(404))

	service := NewService(api, nil, 0, zaptest.NewLogger(t))
	_, err := service.GetRecipe(context.Background(), 404)

	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetRecipe_RejectsInvalidID(t *testing.T) {
	service := NewService(&testutils.MockRecipeAPI{}, nil, 0, zaptest.NewLogger(t))

	_, err := service.GetRecipe(context.Background(), 0)

	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}
