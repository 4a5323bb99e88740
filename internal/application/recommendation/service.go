// Package recommendation implements the search cascade: up to three
// progressively relaxed recipe searches, returning the first non-empty result.
package recommendation

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/application/query"
	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/recipe"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

// Cascade steps, in the order they run.
const (
	StepAIAssisted = "ai_assisted"
	StepStandard   = "standard"
	StepBroadest   = "broadest"
)

// Attempt outcomes reported to metrics.
const (
	outcomeHit     = "hit"
	outcomeEmpty   = "empty"
	outcomeError   = "error"
	outcomeSkipped = "skipped"
)

// QueryParser is the query interpreter as seen by the cascade.
type QueryParser interface {
	Parse(ctx context.Context, queryText string) query.Result
}

// Service runs recommendation cascades.
type Service struct {
	store       outbound.PantryStore
	parser      QueryParser
	recipes     outbound.RecipeAPI
	resultCount int
	metrics     outbound.Metrics
	logger      *zap.Logger
}

// NewService creates a recommendation service
func NewService(
	store outbound.PantryStore,
	parser QueryParser,
	recipes outbound.RecipeAPI,
	resultCount int,
	metrics outbound.Metrics,
	logger *zap.Logger,
) *Service {
	if resultCount <= 0 {
		resultCount = recipe.DefaultResultCount
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Service{
		store:       store,
		parser:      parser,
		recipes:     recipes,
		resultCount: resultCount,
		metrics:     metrics,
		logger:      logger.Named("recommendation-service"),
	}
}

// Recommend returns recipes for queryText biased by the user's pantry and
// diet. Only a failure of the final, broadest search is returned as an error;
// an empty final result is a success.
func (s *Service) Recommend(ctx context.Context, userID, queryText string) ([]recipe.RecipeSummary, error) {
	ctx, span := otel.Tracer("savvy/recommendation").Start(ctx, "Recommend")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	log := s.logger.With(zap.String("user_id", userID), zap.String("query", queryText))
	log.Info("New recommendation request")

	items, err := s.store.GetPantry(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pantry: %w", err)
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load taste profile: %w", err)
	}

	parsed := s.parser.Parse(ctx, queryText)

	plan := BuildPlan(queryText, parsed, items, profile, s.resultCount)
	if !parsed.OK() {
		s.metrics.ObserveCascadeAttempt(StepAIAssisted, outcomeSkipped)
		log.Info("Skipping AI-assisted search", zap.String("reason", parsed.Outcome))
	}

	for i, attempt := range plan {
		final := i == len(plan)-1
		recipes, err := s.search(ctx, attempt, log)

		switch {
		case err != nil && final:
			span.RecordError(err)
			span.SetStatus(codes.Error, "all search attempts failed")
			if apperrors.GetCode(err) == apperrors.CodeUpstreamUnavailable {
				return nil, err
			}
			return nil, apperrors.NewUpstreamError("recipe search", err)
		case err != nil:
			continue
		case len(recipes) > 0 || final:
			span.SetAttributes(
				attribute.String("cascade.step", attempt.Step),
				attribute.Int("cascade.results", len(recipes)),
			)
			return recipes, nil
		}
	}

	// BuildPlan always ends with the broadest attempt.
	return []recipe.RecipeSummary{}, nil
}

func (s *Service) search(ctx context.Context, attempt Attempt, log *zap.Logger) ([]recipe.RecipeSummary, error) {
	ctx, span := otel.Tracer("savvy/recommendation").Start(ctx, "SearchAttempt")
	defer span.End()
	span.SetAttributes(
		attribute.String("cascade.step", attempt.Step),
		attribute.Bool("cascade.pantry_boost", attempt.Params.HasPantryBoost()),
	)

	log = log.With(zap.String("step", attempt.Step))
	log.Info("Searching recipes",
		zap.String("search_query", attempt.Params.Query),
		zap.String("diet", attempt.Params.Diet),
		zap.String("include_ingredients", attempt.Params.IncludeIngredients))

	recipes, err := s.recipes.SearchRecipes(ctx, attempt.Params)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveCascadeAttempt(attempt.Step, outcomeError)
		log.Warn("Search attempt failed", zap.Error(err))
		return nil, err
	}
	if recipes == nil {
		recipes = []recipe.RecipeSummary{}
	}

	if len(recipes) == 0 {
		s.metrics.ObserveCascadeAttempt(attempt.Step, outcomeEmpty)
		log.Info("Search attempt found no recipes")
		return recipes, nil
	}

	s.metrics.ObserveCascadeAttempt(attempt.Step, outcomeHit)
	log.Info("Search attempt found recipes", zap.Int("count", len(recipes)))
	return recipes, nil
}

// Attempt is one planned search.
type Attempt struct {
	Step   string
	Params recipe.SearchParams
}

// BuildPlan lays out the cascade for a request. The AI-assisted attempt is
// only planned when the interpreter produced keywords; the diet filter is kept
// by every attempt.
func BuildPlan(
	queryText string,
	parsed query.Result,
	items []pantry.PantryItem,
	profile pantry.TasteProfile,
	resultCount int,
) []Attempt {
	base := recipe.SearchParams{
		Diet:   profile.DietFilter(),
		Number: resultCount,
	}
	pantryNames := strings.Join(pantry.ItemNames(items), ", ")

	withPantry := func(p recipe.SearchParams) recipe.SearchParams {
		if pantryNames != "" {
			p.IncludeIngredients = pantryNames
			p.Ranking = recipe.RankingPreferPantry
		}
		return p
	}

	plan := make([]Attempt, 0, 3)

	if parsed.OK() {
		ai := base
		ai.Query = fmt.Sprintf("%s, %s", queryText, strings.Join(parsed.Query.Keywords, ", "))
		plan = append(plan, Attempt{Step: StepAIAssisted, Params: withPantry(ai)})
	}

	standard := base
	standard.Query = queryText
	plan = append(plan, Attempt{Step: StepStandard, Params: withPantry(standard)})

	broadest := base
	broadest.Query = queryText
	plan = append(plan, Attempt{Step: StepBroadest, Params: broadest})

	return plan
}
