// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/recipe"
	"github.com/savvykitchen/savvy/internal/domain/user"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// MockTextGenerator provides a mock implementation of TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

// Generate returns the configured completion
func (m *MockTextGenerator) Generate(ctx context.Context, prompt string, opts outbound.GenerateOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

// Name identifies the mock provider
func (m *MockTextGenerator) Name() string {
	return "mock"
}

// MockRecipeAPI provides a mock implementation of RecipeAPI
type MockRecipeAPI struct {
	mock.Mock
}

// GetRecipeInformation returns the configured detail
func (m *MockRecipeAPI) GetRecipeInformation(ctx context.Context, recipeID int) (*recipe.RecipeDetail, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipe.RecipeDetail), args.Error(1)
}

// SearchRecipes returns the configured hits
func (m *MockRecipeAPI) SearchRecipes(ctx context.Context, params recipe.SearchParams) ([]recipe.RecipeSummary, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recipe.RecipeSummary), args.Error(1)
}

// MockPantryStore provides a mock implementation of PantryStore
type MockPantryStore struct {
	mock.Mock
}

// GetPantry returns the configured items
func (m *MockPantryStore) GetPantry(ctx context.Context, userID string) ([]pantry.PantryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.PantryItem), args.Error(1)
}

// AddPantryItem returns the configured item
func (m *MockPantryStore) AddPantryItem(ctx context.Context, userID, name string, expiry *pantry.Date) (pantry.PantryItem, error) {
	args := m.Called(ctx, userID, name, expiry)
	return args.Get(0).(pantry.PantryItem), args.Error(1)
}

// DeletePantryItem returns the configured outcome
func (m *MockPantryStore) DeletePantryItem(ctx context.Context, userID string, itemID uint64) (bool, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Bool(0), args.Error(1)
}

// GetProfile returns the configured profile
func (m *MockPantryStore) GetProfile(ctx context.Context, userID string) (pantry.TasteProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(pantry.TasteProfile), args.Error(1)
}

// UpdateProfile returns the configured profile
func (m *MockPantryStore) UpdateProfile(ctx context.Context, userID string, profile pantry.TasteProfile) (pantry.TasteProfile, error) {
	args := m.Called(ctx, userID, profile)
	return args.Get(0).(pantry.TasteProfile), args.Error(1)
}

// AppendShoppingList records the call
func (m *MockPantryStore) AppendShoppingList(ctx context.Context, userID string, entries []pantry.ShoppingListEntry) error {
	args := m.Called(ctx, userID, entries)
	return args.Error(0)
}

// GetShoppingList returns the configured list
func (m *MockPantryStore) GetShoppingList(ctx context.Context, userID string) ([]pantry.ShoppingListEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.ShoppingListEntry), args.Error(1)
}

// MockUserRepository provides a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

// CreateUser records the call
func (m *MockUserRepository) CreateUser(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// FindUserByID returns the configured user
func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// FindUserByEmail returns the configured user
func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// MockInteractionRepository provides a mock implementation of InteractionRepository
type MockInteractionRepository struct {
	mock.Mock
}

// Append records the call
func (m *MockInteractionRepository) Append(ctx context.Context, in *interaction.Interaction) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

// FindByUserID returns the configured interactions
func (m *MockInteractionRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]*interaction.Interaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*interaction.Interaction), args.Error(1)
}

// MockCacheRepository is a mock implementation of the cache repository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// RecordingBus is an in-process MessageBus that keeps every published message.
type RecordingBus struct {
	mu       sync.Mutex
	messages map[string][]outbound.Message
	err      error
}

// NewRecordingBus creates a bus whose Publish fails with err when non-nil.
func NewRecordingBus(err error) *RecordingBus {
	return &RecordingBus{messages: make(map[string][]outbound.Message), err: err}
}

// Publish stores the message
func (b *RecordingBus) Publish(_ context.Context, topic string, message outbound.Message) error {
	if b.err != nil {
		return b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[topic] = append(b.messages[topic], message)
	return nil
}

// Subscribe is a no-op
func (b *RecordingBus) Subscribe(context.Context, string, outbound.MessageHandler) error {
	return nil
}

// Close is a no-op
func (b *RecordingBus) Close() error {
	return nil
}

// Messages returns what was published on topic.
func (b *RecordingBus) Messages(topic string) []outbound.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]outbound.Message(nil), b.messages[topic]...)
}
