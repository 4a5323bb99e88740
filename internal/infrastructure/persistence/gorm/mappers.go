// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"time"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/domain/pantry"
	"github.com/savvykitchen/savvy/internal/domain/user"
)

// PantryItemToDomain converts a GORM model to a domain pantry item
func PantryItemToDomain(m *PantryItemModel) pantry.PantryItem {
	item := pantry.PantryItem{
		ID:       m.ID,
		ItemName: m.ItemName,
		UserID:   m.UserID,
	}
	if m.ExpiryDate != nil {
		d := pantry.NewDate(*m.ExpiryDate)
		item.ExpiryDate = &d
	}
	return item
}

// ProfileToModel converts a taste profile to the user row that stores it
func ProfileToModel(userID string, p pantry.TasteProfile) *UserModel {
	return &UserModel{
		ID:                  userID,
		HouseholdSize:       p.HouseholdSize,
		DietaryRestrictions: StringSlice(p.DietaryRestrictions),
		HealthGoals:         StringSlice(p.HealthGoals),
	}
}

// ModelToProfile converts a user row to a taste profile
func ModelToProfile(m *UserModel) pantry.TasteProfile {
	return pantry.TasteProfile{
		HouseholdSize:       m.HouseholdSize,
		DietaryRestrictions: append([]string{}, m.DietaryRestrictions...),
		HealthGoals:         append([]string{}, m.HealthGoals...),
	}
}

// UserToModel converts a registered user to its row
func UserToModel(u *user.User) *UserModel {
	m := ProfileToModel(u.ID, u.TasteProfile)
	if u.Email != "" {
		email := u.Email
		m.Email = &email
	}
	m.CreatedAt = u.CreatedAt
	return m
}

// ModelToUser converts a user row to a domain user
func ModelToUser(m *UserModel) *user.User {
	u := &user.User{
		ID:           m.ID,
		TasteProfile: ModelToProfile(m),
		CreatedAt:    m.CreatedAt.UTC(),
	}
	if m.Email != nil {
		u.Email = *m.Email
	}
	return u
}

// ShoppingEntryToModel converts a shopping list entry to a GORM model
func ShoppingEntryToModel(userID string, e pantry.ShoppingListEntry) *ShoppingListEntryModel {
	m := &ShoppingListEntryModel{UserID: userID, Name: e.Name}
	if e.Substitution != nil {
		m.SubstitutionName = e.Substitution.Name
		m.SubstitutionSavings = e.Substitution.Savings
	}
	return m
}

// ModelToShoppingEntry converts a GORM model to a shopping list entry
func ModelToShoppingEntry(m *ShoppingListEntryModel) pantry.ShoppingListEntry {
	e := pantry.ShoppingListEntry{Name: m.Name}
	if m.SubstitutionName != "" {
		e.Substitution = &pantry.Substitution{Name: m.SubstitutionName, Savings: m.SubstitutionSavings}
	}
	return e
}

// InteractionToModel converts a domain interaction to a GORM model
func InteractionToModel(in *interaction.Interaction) *InteractionModel {
	return &InteractionModel{
		ID:        in.ID,
		UserID:    in.UserID,
		RecipeID:  in.RecipeID,
		Type:      string(in.Type),
		CreatedAt: in.CreatedAt,
	}
}

// ModelToInteraction converts a GORM model to a domain interaction
func ModelToInteraction(m *InteractionModel) *interaction.Interaction {
	return &interaction.Interaction{
		ID:        m.ID,
		UserID:    m.UserID,
		RecipeID:  m.RecipeID,
		Type:      interaction.Type(m.Type),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func dateToTime(d *pantry.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
