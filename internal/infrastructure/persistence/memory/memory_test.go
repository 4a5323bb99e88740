package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/user"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

func TestPantryStore_IDsAreMonotonicAcrossUsers(t *testing.T) {
	store := NewPantryStore()
	ctx := context.Background()

	a, err := store.AddPantryItem(ctx, "1", "eggs", nil)
	require.NoError(t, err)
	b, err := store.AddPantryItem(ctx, "2", "milk", nil)
	require.NoError(t, err)

	deleted, err := store.DeletePantryItem(ctx, "2", b.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	c, err := store.AddPantryItem(ctx, "2", "milk", nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), a.ID)
	assert.Equal(t, uint64(2), b.ID)
	assert.Equal(t, uint64(3), c.ID)
}

func TestPantryStore_DeleteRequiresOwner(t *testing.T) {
	store := NewPantryStore()
	ctx := context.Background()
	item, _ := store.AddPantryItem(ctx, "1", "eggs", nil)

	deleted, err := store.DeletePantryItem(ctx, "2", item.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	items, _ := store.GetPantry(ctx, "1")
	assert.Len(t, items, 1)
}

func TestPantryStore_ReadsAreIdempotentCopies(t *testing.T) {
	store := NewPantryStore()
	ctx := context.Background()
	expiry := pantry.NewDate(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC))
	_, _ = store.AddPantryItem(ctx, "1", "eggs", &expiry)

	first, _ := store.GetPantry(ctx, "1")
	first[0].ItemName = "mutated"
	*first[0].ExpiryDate = pantry.NewDate(time.Now())

	second, _ := store.GetPantry(ctx, "1")
	assert.Equal(t, "eggs", second[0].ItemName)
	assert.Equal(t, "2026-12-01", second[0].ExpiryDate.String())
}

func TestPantryStore_EmptyReadsAreNotNil(t *testing.T) {
	store := NewPantryStore()

	items, err := store.GetPantry(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, items)

	list, err := store.GetShoppingList(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
}

func TestPantryStore_Profile(t *testing.T) {
	store := NewPantryStore()
	ctx := context.Background()

	profile, err := store.GetProfile(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, pantry.DefaultTasteProfile(), profile)

	restrictions := []string{"vegan"}
	_, err = store.UpdateProfile(ctx, "1", pantry.TasteProfile{HouseholdSize: 3, DietaryRestrictions: restrictions})
	require.NoError(t, err)
	restrictions[0] = "mutated"

	profile, _ = store.GetProfile(ctx, "1")
	assert.Equal(t, 3, profile.HouseholdSize)
	assert.Equal(t, []string{"vegan"}, profile.DietaryRestrictions)
	assert.Equal(t, []string{}, profile.HealthGoals)
}

func TestPantryStore_ConcurrentAdds(t *testing.T) {
	store := NewPantryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.AddPantryItem(ctx, "1", "eggs", nil)
		}()
	}
	wg.Wait()

	items, _ := store.GetPantry(ctx, "1")
	require.Len(t, items, 50)
	seen := make(map[uint64]bool)
	for _, item := range items {
		assert.False(t, seen[item.ID])
		seen[item.ID] = true
	}
}

func TestPantryStore_ShoppingList(t *testing.T) {
	store := NewPantryStore()
	ctx := context.Background()

	require.NoError(t, store.AppendShoppingList(ctx, "1", []pantry.ShoppingListEntry{
		{Name: "milk", Substitution: &pantry.Substitution{Name: "Store Brand Milk", Savings: "$0.50"}},
	}))
	require.NoError(t, store.AppendShoppingList(ctx, "1", []pantry.ShoppingListEntry{{Name: "eggs"}}))

	list, err := store.GetShoppingList(ctx, "1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "milk", list[0].Name)
	assert.Equal(t, "eggs", list[1].Name)
}

func TestInteractionRepository_NewestFirstWithLimit(t *testing.T) {
	repo := NewInteractionRepository()
	ctx := context.Background()

	for id := 1; id <= 3; id++ {
		require.NoError(t, repo.Append(ctx, interaction.New("1", id, interaction.TypeView)))
	}
	require.NoError(t, repo.Append(ctx, interaction.New("2", 9, interaction.TypeSave)))

	found, err := repo.FindByUserID(ctx, "1", 2)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 3, found[0].RecipeID)
	assert.Equal(t, 2, found[1].RecipeID)

	none, err := repo.FindByUserID(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCacheRepository_TTL(t *testing.T) {
	cache := NewCacheRepository()
	defer cache.Close()
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	ok, _ := cache.Exists(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	cache.sweep()
	cache.mutex.RLock()
	assert.Empty(t, cache.data)
	cache.mutex.RUnlock()
}

func TestCacheRepository_MissAndDelete(t *testing.T) {
	cache := NewCacheRepository()
	defer cache.Close()
	ctx := context.Background()

	_, err := cache.Get(ctx, "absent")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, cache.Delete(ctx, "k"))

	ok, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPantryStore_Users(t *testing.T) {
	store := NewPantryStore()
	ctx := context.Background()

	u := user.New("cook@example.com")
	require.NoError(t, store.CreateUser(ctx, u))
	assert.ErrorIs(t, store.CreateUser(ctx, user.New(" Cook@example.com")), outbound.ErrEmailTaken)

	byEmail, err := store.FindUserByEmail(ctx, "COOK@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	// returned users are copies
	byEmail.DietaryRestrictions = append(byEmail.DietaryRestrictions, "vegan")
	byID, err := store.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, byID.DietaryRestrictions)

	_, err = store.FindUserByID(ctx, "9")
	assert.ErrorIs(t, err, outbound.ErrUserNotFound)
	_, err = store.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, outbound.ErrUserNotFound)
}

func TestPantryStore_ProfileWriteCreatesUser(t *testing.T) {
	store := NewPantryStore()
	ctx := context.Background()

	// pantry items alone do not make an account
	_, err := store.AddPantryItem(ctx, "9", "eggs", nil)
	require.NoError(t, err)
	_, err = store.FindUserByID(ctx, "9")
	require.ErrorIs(t, err, outbound.ErrUserNotFound)

	_, err = store.UpdateProfile(ctx, "9", pantry.TasteProfile{HouseholdSize: 3})
	require.NoError(t, err)

	got, err := store.FindUserByID(ctx, "9")
	require.NoError(t, err)
	assert.Empty(t, got.Email)
	assert.Equal(t, 3, got.HouseholdSize)
}
