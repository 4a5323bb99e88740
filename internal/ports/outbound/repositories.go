// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/user"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

var (
	// ErrUserNotFound is returned by UserRepository lookups that match nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by UserRepository.CreateUser on a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
)

// PantryStore keeps pantry items, taste profiles and shopping lists keyed by
// user id. Each call mutates atomically; no transaction spans several calls.
type PantryStore interface {
	// Pantry items
	GetPantry(ctx context.Context, userID string) ([]pantry.PantryItem, error)
	AddPantryItem(ctx context.Context, userID, name string, expiry *pantry.Date) (pantry.PantryItem, error)
	DeletePantryItem(ctx context.Context, userID string, itemID uint64) (bool, error)

	// Taste profile, replaced as a whole
	GetProfile(ctx context.Context, userID string) (pantry.TasteProfile, error)
	UpdateProfile(ctx context.Context, userID string, profile pantry.TasteProfile) (pantry.TasteProfile, error)

	// Shopping list, append-only
	AppendShoppingList(ctx context.Context, userID string, entries []pantry.ShoppingListEntry) error
	GetShoppingList(ctx context.Context, userID string) ([]pantry.ShoppingListEntry, error)
}

// UserRepository stores accounts. A user also exists once a profile has been
// written for its id, with or without an email.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByID(ctx context.Context, userID string) (*user.User, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
}

// InteractionRepository is the append-only interaction log.
type InteractionRepository interface {
	Append(ctx context.Context, in *interaction.Interaction) error
	FindByUserID(ctx context.Context, userID string, limit int) ([]*interaction.Interaction, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// MessageBus defines the interface for publishing messages
type MessageBus interface {
	Publish(ctx context.Context, topic string, message Message) error
	Subscribe(ctx context.Context, topic string, handler MessageHandler) error
	Close() error
}

// Message represents a message to be published
type Message struct {
	ID        string
	Type      string
	Payload   []byte
	Metadata  map[string]string
	Timestamp time.Time
}

// MessageHandler handles incoming messages
type MessageHandler func(ctx context.Context, message Message) error
