package pantry

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	item := PantryItem{ID: 1, ItemName: "milk", UserID: "1"}
	d := NewDate(time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC))
	item.ExpiryDate = &d

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"expiry_date":"2026-03-14"`)

	var decoded PantryItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.ExpiryDate)
	assert.Equal(t, "2026-03-14", decoded.ExpiryDate.String())
}

func TestDate_NullExpiry(t *testing.T) {
	data, err := json.Marshal(PantryItem{ID: 2, ItemName: "rice", UserID: "1"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"expiry_date":null`)
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("14/03/2026")
	assert.Error(t, err)
}

func TestTasteProfile_Normalize(t *testing.T) {
	profile := TasteProfile{
		HouseholdSize:       3,
		DietaryRestrictions: []string{"vegan", " vegan ", "", "gluten free"},
	}.Normalize()

	assert.Equal(t, []string{"vegan", "gluten free"}, profile.DietaryRestrictions)
	assert.NotNil(t, profile.HealthGoals)
	assert.Empty(t, profile.HealthGoals)
	assert.Equal(t, "vegan,gluten free", profile.DietFilter())
}

func TestDefaultTasteProfile(t *testing.T) {
	profile := DefaultTasteProfile()
	assert.Equal(t, DefaultHouseholdSize, profile.HouseholdSize)
	assert.Empty(t, profile.DietFilter())
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"eggs":           "Eggs",
		"EGGS":           "Eggs",
		"olive oil":      "Olive oil",
		"":               "",
		"éclair pastry":  "Éclair pastry",
	}
	for in, want := range tests {
		assert.Equal(t, want, Capitalize(in), in)
	}
}

func TestNameSet(t *testing.T) {
	set := NameSet([]PantryItem{{ItemName: "Milk"}, {ItemName: " eggs "}})
	assert.Contains(t, set, "milk")
	assert.Contains(t, set, "eggs")
	assert.Len(t, set, 2)
}

func TestSubstitutionCatalog_Lookup(t *testing.T) {
	catalog := NewSubstitutionCatalog(map[string]Substitution{
		"Milk": {Name: "Great Value 1% Milk", Savings: "0.50"},
	})

	sub, ok := catalog.Lookup("milk")
	require.True(t, ok)
	assert.Equal(t, "Great Value 1% Milk", sub.Name)

	sub.Name = "mutated"
	again, _ := catalog.Lookup("MILK")
	assert.Equal(t, "Great Value 1% Milk", again.Name)

	_, ok = catalog.Lookup("butter")
	assert.False(t, ok)
}
