// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel holds the account and its taste profile. Rows are created by
// registration or lazily on the first profile write, in which case Email is
// NULL; the unique index ignores NULLs.
type UserModel struct {
	ID                  string      `gorm:"type:varchar(64);primaryKey"`
	Email               *string     `gorm:"type:varchar(255);uniqueIndex"`
	HouseholdSize       int         `gorm:"not null;default:2"`
	DietaryRestrictions StringSlice `gorm:"type:json"`
	HealthGoals         StringSlice `gorm:"type:json"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// PantryItemModel represents the GORM model for pantry items
type PantryItemModel struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	UserID     string     `gorm:"type:varchar(64);not null;index"`
	ItemName   string     `gorm:"type:varchar(255);not null"`
	ExpiryDate *time.Time `gorm:"type:date"`
	CreatedAt  time.Time
}

// ShoppingListEntryModel represents one appended shopping list line
type ShoppingListEntryModel struct {
	ID                  uint64 `gorm:"primaryKey;autoIncrement"`
	UserID              string `gorm:"type:varchar(64);not null;index"`
	Name                string `gorm:"type:varchar(255);not null"`
	SubstitutionName    string `gorm:"type:varchar(255)"`
	SubstitutionSavings string `gorm:"type:varchar(64)"`
	CreatedAt           time.Time
}

// InteractionModel represents the GORM model for interaction log entries
type InteractionModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;index"`
	RecipeID  int       `gorm:"not null;index"`
	Type      string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"index"`
}

// StringSlice custom type for handling string arrays
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hook for InteractionModel
func (i *InteractionModel) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// AllModels lists every table for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&PantryItemModel{},
		&ShoppingListEntryModel{},
		&InteractionModel{},
	}
}

// TableName methods for custom table names
func (UserModel) TableName() string {
	return "users"
}

func (PantryItemModel) TableName() string {
	return "pantry_items"
}

func (ShoppingListEntryModel) TableName() string {
	return "shopping_list_entries"
}

func (InteractionModel) TableName() string {
	return "interactions"
}
