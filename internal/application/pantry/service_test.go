package pantry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/user"
	"github.com/savvykitchen/savvy/internal/ports/inbound"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
	"github.com/savvykitchen/savvy/test/testutils"
)

func newService(t *testing.T) (*Service, *testutils.MockPantryStore) {
	store := &testutils.MockPantryStore{}
	return NewService(store, &testutils.MockUserRepository{}, "", zaptest.NewLogger(t)), store
}

func TestAddPantryItem(t *testing.T) {
	service, store := newService(t)
	expiry, err := pantry.ParseDate("2026-11-02")
	require.NoError(t, err)

	stored := pantry.PantryItem{ID: 4, ItemName: "Greek yogurt", ExpiryDate: &expiry, UserID: "1"}
	store.On("AddPantryItem", mock.Anything, "1", "Greek yogurt", &expiry).Return(stored, nil).Once()

	item, err := service.AddPantryItem(context.Background(), inbound.AddPantryItemCommand{
		UserID:     "1",
		ItemName:   "  Greek yogurt ",
		ExpiryDate: &expiry,
	})

	require.NoError(t, err)
	assert.Equal(t, stored, item)
	store.AssertExpectations(t)
}

func TestAddPantryItem_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  inbound.AddPantryItemCommand
	}{
		{"blank name", inbound.AddPantryItemCommand{UserID: "1", ItemName: "   "}},
		{"missing user", inbound.AddPantryItemCommand{ItemName: "rice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newService(t)

			_, err := service.AddPantryItem(context.Background(), tt.cmd)

			assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
			store.AssertNotCalled(t, "AddPantryItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDeletePantryItem(t *testing.T) {
	service, store := newService(t)
	store.On("DeletePantryItem", mock.Anything, "1", uint64(3)).Return(true, nil).Once()
	store.On("DeletePantryItem", mock.Anything, "1", uint64(3)).Return(false, nil).Once()

	require.NoError(t, service.DeletePantryItem(context.Background(), "1", 3))

	err := service.DeletePantryItem(context.Background(), "1", 3)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, apperrors.CodePantryItemNotFound, apperrors.GetCode(err))
}

func TestDeletePantryItem_StoreError(t *testing.T) {
	service, store := newService(t)
	store.On("DeletePantryItem", mock.Anything, "2", uint64(1)).Return(false, errors.New("db closed"))

	err := service.DeletePantryItem(context.Background(), "2", 1)

	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
}

func TestListPantry_ReturnsEmptySlice(t *testing.T) {
	service, store := newService(t)
	store.On("GetPantry", mock.Anything, "9").Return(nil, nil)

	items, err := service.ListPantry(context.Background(), "9")

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestUpdateProfile(t *testing.T) {
	service, store := newService(t)
	normalized := pantry.TasteProfile{
		HouseholdSize:       3,
		DietaryRestrictions: []string{"vegan"},
		HealthGoals:         []string{},
	}
	store.On("UpdateProfile", mock.Anything, "1", normalized).Return(normalized, nil).Once()

	saved, err := service.UpdateProfile(context.Background(), "1", pantry.TasteProfile{
		HouseholdSize:       3,
		DietaryRestrictions: []string{"vegan", " vegan "},
	})

	require.NoError(t, err)
	assert.Equal(t, normalized, saved)
}

func TestUpdateProfile_RejectsEmptyHousehold(t *testing.T) {
	service, store := newService(t)

	_, err := service.UpdateProfile(context.Background(), "1", pantry.TasteProfile{HouseholdSize: 0})

	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	store.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetContext(t *testing.T) {
	store := &testutils.MockPantryStore{}
	users := &testutils.MockUserRepository{}
	items := testutils.NewFactory(7).PantryItems("5", 2)
	store.On("GetPantry", mock.Anything, "5").Return(items, nil)
	users.On("FindUserByID", mock.Anything, "5").Return(&user.User{
		ID:           "5",
		TasteProfile: pantry.TasteProfile{HouseholdSize: 4, DietaryRestrictions: []string{"vegan"}},
	}, nil)

	service := NewService(store, users, "Pacific Northwest", zaptest.NewLogger(t))
	got, err := service.GetContext(context.Background(), "5")

	require.NoError(t, err)
	assert.Equal(t, "Pacific Northwest", got.Region)
	assert.Equal(t, items, got.Pantry)
	assert.Equal(t, 4, got.Profile.HouseholdSize)
	assert.Equal(t, []string{}, got.Profile.HealthGoals)
}

func TestGetContext_UnknownUser(t *testing.T) {
	store := &testutils.MockPantryStore{}
	users := &testutils.MockUserRepository{}
	users.On("FindUserByID", mock.Anything, "404").Return(nil, outbound.ErrUserNotFound)

	service := NewService(store, users, "", zaptest.NewLogger(t))
	_, err := service.GetContext(context.Background(), "404")

	assert.Equal(t, apperrors.CodeUserNotFound, apperrors.GetCode(err))
	store.AssertNotCalled(t, "GetPantry", mock.Anything, mock.Anything)
}

func TestGetShoppingList_RequiresUser(t *testing.T) {
	service, _ := newService(t)

	_, err := service.GetShoppingList(context.Background(), " ")

	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}
