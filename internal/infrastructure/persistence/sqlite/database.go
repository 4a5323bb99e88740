// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/savvykitchen/savvy/internal/domain/user"
	gormModels "github.com/savvykitchen/savvy/internal/infrastructure/persistence/gorm"
)

// DemoUserID is the account the bundled frontend uses
const (
	DemoUserID    = "1"
	DemoUserEmail = "demo@savvy.local"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, gormLogger logger.Interface) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Run auto-migration
	if err := gormModels.Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// SeedDatabase gives the demo user a profile and a few pantry staples
func SeedDatabase(ctx context.Context, db *gorm.DB) error {
	// Check if data already exists
	var existing gormModels.UserModel
	err := db.WithContext(ctx).First(&existing, "id = ?", DemoUserID).Error
	if err == nil {
		return nil // Already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check seed state: %w", err)
	}

	demo := user.New(DemoUserEmail)
	demo.ID = DemoUserID
	if err := gormModels.NewUserRepository(db).CreateUser(ctx, demo); err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	store := gormModels.NewPantryStore(db)

	for _, name := range []string{"eggs", "milk", "rice"} {
		if _, err := store.AddPantryItem(ctx, DemoUserID, name, nil); err != nil {
			return fmt.Errorf("failed to seed pantry item: %w", err)
		}
	}

	return nil
}
