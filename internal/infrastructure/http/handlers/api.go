// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/recipe"
	"github.com/savvykitchen/savvy/internal/infrastructure/http/middleware"
	"github.com/savvykitchen/savvy/internal/ports/inbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

const (
	maxBodyBytes           = 1 << 20
	defaultInteractionList = 50
	maxInteractionList     = 500
)

// APIHandlers handles REST API requests
type APIHandlers struct {
	pantry          inbound.PantryService
	users           inbound.UserService
	recommendations inbound.RecommendationService
	cart            inbound.SmartCartService
	recipes         inbound.RecipeCatalogService
	interactions    inbound.InteractionService
	logger          *zap.Logger
}

// Services groups the use cases the handlers delegate to
type Services struct {
	Pantry          inbound.PantryService
	Users           inbound.UserService
	Recommendations inbound.RecommendationService
	Cart            inbound.SmartCartService
	Recipes         inbound.RecipeCatalogService
	Interactions    inbound.InteractionService
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(svc Services, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		pantry:          svc.Pantry,
		users:           svc.Users,
		recommendations: svc.Recommendations,
		cart:            svc.Cart,
		recipes:         svc.Recipes,
		interactions:    svc.Interactions,
		logger:          logger.Named("api"),
	}
}

// Routes mounts every endpoint on r
func (h *APIHandlers) Routes(r chi.Router) {
	r.Post("/recommend", h.Recommend)
	r.Get("/recipe/{recipe_id}", h.GetRecipe)

	r.Get("/smart-cart/{user_id}/{recipe_id}", h.MissingIngredients)
	r.Post("/shopping-list/{user_id}/{recipe_id}", h.AddToShoppingList)
	r.Get("/shopping-list/{user_id}", h.GetShoppingList)

	r.Route("/pantry", func(r chi.Router) {
		r.Delete("/item/{item_id}", h.DeletePantryItemLegacy)
		r.Get("/{user_id}", h.ListPantry)
		r.Post("/{user_id}", h.AddPantryItem)
		r.Delete("/{user_id}/items/{item_id}", h.DeletePantryItem)
	})

	r.Post("/users", h.RegisterUser)
	r.Post("/users/", h.RegisterUser)
	r.Route("/users/{user_id}", func(r chi.Router) {
		r.Get("/", h.GetUser)
		r.Patch("/taste-profile", h.UpdateTasteProfile)
		r.Get("/profile", h.GetProfile)
		r.Patch("/profile", h.UpdateProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/context", h.GetContext)
	})

	r.Post("/interactions", h.RecordInteraction)
	r.Get("/interactions/{user_id}", h.ListInteractions)
}

// RecommendResponse is the body of POST /recommend
type RecommendResponse struct {
	Recipes []recipe.RecipeSummary `json:"recipes"`
}

// MissingIngredientsResponse is the body of GET /smart-cart
type MissingIngredientsResponse struct {
	MissingIngredients []string `json:"missing_ingredients"`
}

// AddedItemsResponse is the body of POST /shopping-list
type AddedItemsResponse struct {
	AddedItems []pantry.ShoppingListEntry `json:"added_items"`
}

// Recommend handles POST /recommend
func (h *APIHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.RecommendCommand
	if err := decodeBody(r, &cmd); err != nil {
		h.writeError(w, r, err)
		return
	}
	if cmd.UserID == "" {
		h.writeError(w, r, apperrors.NewValidationError("user_id is required"))
		return
	}
	if cmd.QueryText == "" {
		h.writeError(w, r, apperrors.NewValidationError("query_text is required"))
		return
	}

	recipes, err := h.recommendations.Recommend(r.Context(), cmd.UserID.String(), cmd.QueryText)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if recipes == nil {
		recipes = []recipe.RecipeSummary{}
	}

	h.writeJSON(w, http.StatusOK, RecommendResponse{Recipes: recipes})
}

// GetRecipe handles GET /recipe/{recipe_id}. The upstream body is served as received.
func (h *APIHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, err := intParam(r, "recipe_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	detail, err := h.recipes.GetRecipe(r.Context(), recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if len(detail.Raw) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(detail.Raw)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

// MissingIngredients handles GET /smart-cart/{user_id}/{recipe_id}
func (h *APIHandlers) MissingIngredients(w http.ResponseWriter, r *http.Request) {
	recipeID, err := intParam(r, "recipe_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	missing, err := h.cart.MissingIngredients(r.Context(), chi.URLParam(r, "user_id"), recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if missing == nil {
		missing = []string{}
	}

	h.writeJSON(w, http.StatusOK, MissingIngredientsResponse{MissingIngredients: missing})
}

// AddToShoppingList handles POST /shopping-list/{user_id}/{recipe_id}
func (h *APIHandlers) AddToShoppingList(w http.ResponseWriter, r *http.Request) {
	recipeID, err := intParam(r, "recipe_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	added, err := h.cart.AddMissingToShoppingList(r.Context(), chi.URLParam(r, "user_id"), recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if added == nil {
		added = []pantry.ShoppingListEntry{}
	}

	h.writeJSON(w, http.StatusOK, AddedItemsResponse{AddedItems: added})
}

// GetShoppingList handles GET /shopping-list/{user_id}
func (h *APIHandlers) GetShoppingList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.pantry.GetShoppingList(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []pantry.ShoppingListEntry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// ListPantry handles GET /pantry/{user_id}
func (h *APIHandlers) ListPantry(w http.ResponseWriter, r *http.Request) {
	items, err := h.pantry.ListPantry(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []pantry.PantryItem{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// AddPantryItem handles POST /pantry/{user_id}
func (h *APIHandlers) AddPantryItem(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.AddPantryItemCommand
	if err := decodeBody(r, &cmd); err != nil {
		h.writeError(w, r, err)
		return
	}
	cmd.UserID = chi.URLParam(r, "user_id")

	item, err := h.pantry.AddPantryItem(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, item)
}

// DeletePantryItem handles DELETE /pantry/{user_id}/items/{item_id}
func (h *APIHandlers) DeletePantryItem(w http.ResponseWriter, r *http.Request) {
	h.deletePantryItem(w, r, chi.URLParam(r, "user_id"))
}

// DeletePantryItemLegacy handles DELETE /pantry/item/{item_id}?user_id=
func (h *APIHandlers) DeletePantryItemLegacy(w http.ResponseWriter, r *http.Request) {
	h.deletePantryItem(w, r, r.URL.Query().Get("user_id"))
}

func (h *APIHandlers) deletePantryItem(w http.ResponseWriter, r *http.Request, userID string) {
	raw := chi.URLParam(r, "item_id")
	itemID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || itemID == 0 {
		h.writeError(w, r, apperrors.NewValidationError("item_id must be a positive integer"))
		return
	}

	if err := h.pantry.DeletePantryItem(r.Context(), userID, itemID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

// RegisterUser handles POST /users
func (h *APIHandlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.RegisterUserCommand
	if err := decodeBody(r, &cmd); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, u)
}

// GetUser handles GET /users/{user_id}
func (h *APIHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// UpdateTasteProfile handles PATCH /users/{user_id}/taste-profile. Unlike
// /profile it requires an existing account and answers with the user.
func (h *APIHandlers) UpdateTasteProfile(w http.ResponseWriter, r *http.Request) {
	profile := pantry.DefaultTasteProfile()
	if err := decodeBody(r, &profile); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.users.UpdateTasteProfile(r.Context(), chi.URLParam(r, "user_id"), profile)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// GetProfile handles GET /users/{user_id}/profile
func (h *APIHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.pantry.GetProfile(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH and PUT /users/{user_id}/profile. The body
// replaces the stored profile; omitted fields take their defaults.
func (h *APIHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile := pantry.DefaultTasteProfile()
	if err := decodeBody(r, &profile); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.pantry.UpdateProfile(r.Context(), chi.URLParam(r, "user_id"), profile)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// GetContext handles GET /users/{user_id}/context
func (h *APIHandlers) GetContext(w http.ResponseWriter, r *http.Request) {
	userCtx, err := h.pantry.GetContext(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, userCtx)
}

// RecordInteraction handles POST /interactions
func (h *APIHandlers) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.RecordInteractionCommand
	if err := decodeBody(r, &cmd); err != nil {
		h.writeError(w, r, err)
		return
	}

	in, err := h.interactions.Record(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, in)
}

// ListInteractions handles GET /interactions/{user_id}?limit=
func (h *APIHandlers) ListInteractions(w http.ResponseWriter, r *http.Request) {
	limit := defaultInteractionList
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, r, apperrors.NewValidationError("limit must be a positive integer"))
			return
		}
		if n > maxInteractionList {
			n = maxInteractionList
		}
		limit = n
	}

	list, err := h.interactions.ListForUser(r.Context(), chi.URLParam(r, "user_id"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*interaction.Interaction{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n <= 0 {
		return 0, apperrors.NewValidationError(name + " must be a positive integer")
	}
	return n, nil
}

func decodeBody(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewBadRequestError("request body is required")
		}
		return apperrors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

// writeJSON writes a JSON response
func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps err onto the error envelope. Errors that are not AppErrors
// never leak their message.
func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error("Unhandled error",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		appErr = apperrors.NewInternalError("internal server error").WithCause(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		h.logger.Warn("Request failed",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}

	h.writeJSON(w, status, apperrors.ToErrorResponse(appErr, requestID))
}
