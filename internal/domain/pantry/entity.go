// Package pantry holds the per-user kitchen state: pantry items, taste profile
// and shopping list.
package pantry

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// DefaultHouseholdSize is used when a user never saved a taste profile.
const DefaultHouseholdSize = 2

// DateLayout is the wire format of expiry dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without time-of-day.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PantryItem is a food item a user reported owning. Items are added and
// deleted, never updated.
type PantryItem struct {
	ID         uint64 `json:"id"`
	ItemName   string `json:"item_name"`
	ExpiryDate *Date  `json:"expiry_date"`
	UserID     string `json:"user_id"`
}

// TasteProfile is replaced as a whole on every write.
type TasteProfile struct {
	HouseholdSize       int      `json:"household_size" validate:"min=1"`
	DietaryRestrictions []string `json:"dietary_restrictions" validate:"dive,required"`
	HealthGoals         []string `json:"health_goals" validate:"dive,required"`
}

// DefaultTasteProfile returns the profile reported for users that never saved one.
func DefaultTasteProfile() TasteProfile {
	return TasteProfile{
		HouseholdSize:       DefaultHouseholdSize,
		DietaryRestrictions: []string{},
		HealthGoals:         []string{},
	}
}

// Normalize collapses duplicate restrictions and goals while keeping their
// first-seen order, and replaces nil slices with empty ones.
func (p TasteProfile) Normalize() TasteProfile {
	p.DietaryRestrictions = uniqueTrimmed(p.DietaryRestrictions)
	p.HealthGoals = uniqueTrimmed(p.HealthGoals)
	return p
}

// DietFilter joins the dietary restrictions the way the recipe API expects
// its diet parameter.
func (p TasteProfile) DietFilter() string {
	return strings.Join(p.DietaryRestrictions, ",")
}

// Substitution is a cheaper store-brand alternative for an ingredient.
type Substitution struct {
	Name    string `json:"name" mapstructure:"name"`
	Savings string `json:"savings" mapstructure:"savings"`
}

// ShoppingListEntry has no identity beyond its position in the list.
type ShoppingListEntry struct {
	Name         string        `json:"name"`
	Substitution *Substitution `json:"substitution,omitempty"`
}

// Context bundles everything the frontend needs to render a user's kitchen.
type Context struct {
	Region  string       `json:"region"`
	Pantry  []PantryItem `json:"pantry"`
	Profile TasteProfile `json:"profile"`
}

// NormalizeName is the key used for every case-insensitive ingredient match.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(name string) string {
	lower := strings.ToLower(name)
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError {
		return lower
	}
	return string(unicode.ToUpper(r)) + lower[size:]
}

// ItemNames returns the item names in pantry order.
func ItemNames(items []PantryItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.ItemName)
	}
	return names
}

// NameSet returns the normalized names of the given items.
func NameSet(items []PantryItem) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[NormalizeName(item.ItemName)] = struct{}{}
	}
	return set
}

func uniqueTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
