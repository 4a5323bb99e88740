package memory

import (
	"context"
	"sync"
	"time"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/user"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// PantryStore keeps every user's kitchen state in process memory. Item ids
// come from one counter shared by all users and are never reused.
type PantryStore struct {
	mu       sync.RWMutex
	nextID   uint64
	items    map[string][]pantry.PantryItem
	profiles map[string]pantry.TasteProfile
	lists    map[string][]pantry.ShoppingListEntry
	accounts map[string]account
	emails   map[string]string
}

type account struct {
	email     string
	createdAt time.Time
}

// NewPantryStore creates an empty store
func NewPantryStore() *PantryStore {
	return &PantryStore{
		items:    make(map[string][]pantry.PantryItem),
		profiles: make(map[string]pantry.TasteProfile),
		lists:    make(map[string][]pantry.ShoppingListEntry),
		accounts: make(map[string]account),
		emails:   make(map[string]string),
	}
}

var (
	_ outbound.PantryStore    = (*PantryStore)(nil)
	_ outbound.UserRepository = (*PantryStore)(nil)
)

// GetPantry returns a copy of the user's items
func (s *PantryStore) GetPantry(ctx context.Context, userID string) ([]pantry.PantryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]pantry.PantryItem, 0, len(s.items[userID]))
	for _, item := range s.items[userID] {
		items = append(items, copyItem(item))
	}
	return items, nil
}

// AddPantryItem assigns the next id and stores the item
func (s *PantryStore) AddPantryItem(ctx context.Context, userID, name string, expiry *pantry.Date) (pantry.PantryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item := copyItem(pantry.PantryItem{
		ID:         s.nextID,
		ItemName:   name,
		ExpiryDate: expiry,
		UserID:     userID,
	})
	s.items[userID] = append(s.items[userID], item)
	return copyItem(item), nil
}

// DeletePantryItem removes the item when userID owns it
func (s *PantryStore) DeletePantryItem(ctx context.Context, userID string, itemID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[userID]
	for i, item := range items {
		if item.ID == itemID {
			s.items[userID] = append(items[:i:i], items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// GetProfile returns the saved profile or the default one
func (s *PantryStore) GetProfile(ctx context.Context, userID string) (pantry.TasteProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return pantry.DefaultTasteProfile(), nil
	}
	return copyProfile(profile), nil
}

// UpdateProfile replaces the profile
func (s *PantryStore) UpdateProfile(ctx context.Context, userID string, profile pantry.TasteProfile) (pantry.TasteProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[userID]; !ok {
		s.accounts[userID] = account{createdAt: time.Now().UTC()}
	}
	s.profiles[userID] = copyProfile(profile)
	return copyProfile(profile), nil
}

// CreateUser registers an account unless its email is taken
func (s *PantryStore) CreateUser(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := user.NormalizeEmail(u.Email)
	if email != "" {
		if _, taken := s.emails[email]; taken {
			return outbound.ErrEmailTaken
		}
		s.emails[email] = u.ID
	}
	s.accounts[u.ID] = account{email: email, createdAt: u.CreatedAt}
	s.profiles[u.ID] = copyProfile(u.TasteProfile)
	return nil
}

// FindUserByID returns a copy of the account
func (s *PantryStore) FindUserByID(ctx context.Context, userID string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lookup(userID)
}

// FindUserByEmail resolves the email index
func (s *PantryStore) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[user.NormalizeEmail(email)]
	if !ok {
		return nil, outbound.ErrUserNotFound
	}
	return s.lookup(id)
}

// lookup requires s.mu
func (s *PantryStore) lookup(userID string) (*user.User, error) {
	acct, ok := s.accounts[userID]
	if !ok {
		return nil, outbound.ErrUserNotFound
	}
	profile, ok := s.profiles[userID]
	if !ok {
		profile = pantry.DefaultTasteProfile()
	}
	return &user.User{
		ID:           userID,
		Email:        acct.email,
		TasteProfile: copyProfile(profile),
		CreatedAt:    acct.createdAt,
	}, nil
}

// AppendShoppingList appends all entries under one lock
func (s *PantryStore) AppendShoppingList(ctx context.Context, userID string, entries []pantry.ShoppingListEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.lists[userID] = append(s.lists[userID], copyEntry(e))
	}
	return nil
}

// GetShoppingList returns a copy of the list
func (s *PantryStore) GetShoppingList(ctx context.Context, userID string) ([]pantry.ShoppingListEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]pantry.ShoppingListEntry, 0, len(s.lists[userID]))
	for _, e := range s.lists[userID] {
		list = append(list, copyEntry(e))
	}
	return list, nil
}

func copyItem(item pantry.PantryItem) pantry.PantryItem {
	if item.ExpiryDate != nil {
		d := *item.ExpiryDate
		item.ExpiryDate = &d
	}
	return item
}

func copyProfile(p pantry.TasteProfile) pantry.TasteProfile {
	p.DietaryRestrictions = append([]string{}, p.DietaryRestrictions...)
	p.HealthGoals = append([]string{}, p.HealthGoals...)
	return p
}

func copyEntry(e pantry.ShoppingListEntry) pantry.ShoppingListEntry {
	if e.Substitution != nil {
		sub := *e.Substitution
		e.Substitution = &sub
	}
	return e
}
