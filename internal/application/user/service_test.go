package user

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
	"github.com/savvykitchen/savvy/internal/infrastructure/persistence/memory"
	"github.com/savvykitchen/savvy/internal/ports/inbound"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
	"github.com/savvykitchen/savvy/test/testutils"
)

func newMemoryService(t *testing.T) *Service {
	store := memory.NewPantryStore()
	return NewService(store, store, zaptest.NewLogger(t))
}

func TestRegister(t *testing.T) {
	service := newMemoryService(t)

	u, err := service.Register(context.Background(), inbound.RegisterUserCommand{Email: " Cook@Example.com"})

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "cook@example.com", u.Email)
	assert.Equal(t, pantry.DefaultTasteProfile(), u.TasteProfile)

	got, err := service.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service := newMemoryService(t)
	_, err := service.Register(context.Background(), inbound.RegisterUserCommand{Email: "cook@example.com"})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), inbound.RegisterUserCommand{Email: "COOK@example.com "})

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmailTaken, apperrors.GetCode(err))
}

func TestRegister_DuplicateDetectedOnInsert(t *testing.T) {
	users := &testutils.MockUserRepository{}
	users.On("FindUserByEmail", mock.Anything, "cook@example.com").Return(nil, outbound.ErrUserNotFound)
	users.On("CreateUser", mock.Anything, mock.AnythingOfType("*user.User")).Return(outbound.ErrEmailTaken)

	service := NewService(users, &testutils.MockPantryStore{}, zaptest.NewLogger(t))
	_, err := service.Register(context.Background(), inbound.RegisterUserCommand{Email: "cook@example.com"})

	assert.Equal(t, apperrors.CodeEmailTaken, apperrors.GetCode(err))
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"empty", "   "},
		{"not an email", "cook-at-example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &testutils.MockUserRepository{}
			service := NewService(users, &testutils.MockPantryStore{}, zaptest.NewLogger(t))

			_, err := service.Register(context.Background(), inbound.RegisterUserCommand{Email: tt.email})

			assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
			users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_LookupError(t *testing.T) {
	users := &testutils.MockUserRepository{}
	users.On("FindUserByEmail", mock.Anything, "cook@example.com").Return(nil, errors.New("db closed"))

	service := NewService(users, &testutils.MockPantryStore{}, zaptest.NewLogger(t))
	_, err := service.Register(context.Background(), inbound.RegisterUserCommand{Email: "cook@example.com"})

	require.Error(t, err)
	assert.NotEqual(t, apperrors.CodeEmailTaken, apperrors.GetCode(err))
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUpdateTasteProfile(t *testing.T) {
	service := newMemoryService(t)
	u, err := service.Register(context.Background(), inbound.RegisterUserCommand{Email: "cook@example.com"})
	require.NoError(t, err)

	updated, err := service.UpdateTasteProfile(context.Background(), u.ID, pantry.TasteProfile{
		HouseholdSize:       5,
		DietaryRestrictions: []string{"gluten free", "gluten free"},
	})

	require.NoError(t, err)
	assert.Equal(t, u.ID, updated.ID)
	assert.Equal(t, "cook@example.com", updated.Email)
	assert.Equal(t, 5, updated.HouseholdSize)
	assert.Equal(t, []string{"gluten free"}, updated.DietaryRestrictions)
}

func TestUpdateTasteProfile_UnknownUser(t *testing.T) {
	store := &testutils.MockPantryStore{}
	users := &testutils.MockUserRepository{}
	users.On("FindUserByID", mock.Anything, "77").Return(nil, outbound.ErrUserNotFound)

	service := NewService(users, store, zaptest.NewLogger(t))
	_, err := service.UpdateTasteProfile(context.Background(), "77", pantry.DefaultTasteProfile())

	assert.Equal(t, apperrors.CodeUserNotFound, apperrors.GetCode(err))
	store.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTasteProfile_RejectsEmptyHousehold(t *testing.T) {
	store := &testutils.MockPantryStore{}
	users := &testutils.MockUserRepository{}
	users.On("FindUserByID", mock.Anything, "1").Return(&user.User{ID: "1", TasteProfile: pantry.DefaultTasteProfile()}, nil)

	service := NewService(users, store, zaptest.NewLogger(t))
	_, err := service.UpdateTasteProfile(context.Background(), "1", pantry.TasteProfile{HouseholdSize: 0})

	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	store.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}
