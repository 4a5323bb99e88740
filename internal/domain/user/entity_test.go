package user

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
)

func TestNew(t *testing.T) {
	u := New("  Cook@Example.COM ")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "cook@example.com", u.Email)
	assert.Equal(t, pantry.DefaultTasteProfile(), u.TasteProfile)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestUser_JSONFlattensProfile(t *testing.T) {
	u := &User{ID: "1", Email: "a@b.co", TasteProfile: pantry.TasteProfile{
		HouseholdSize:       3,
		DietaryRestrictions: []string{"vegan"},
		HealthGoals:         []string{},
	}}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "1", body["id"])
	assert.Equal(t, "a@b.co", body["email"])
	assert.Equal(t, float64(3), body["household_size"])
	assert.Equal(t, []interface{}{"vegan"}, body["dietary_restrictions"])
}
