// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormModels "github.com/savvykitchen/savvy/internal/infrastructure/persistence/gorm"
)

// SetupSQLiteDatabase opens a private in-memory SQLite database with every
// table migrated. It is closed when the test ends.
func SetupSQLiteDatabase(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormModels.NewLogger(zaptest.NewLogger(t), "silent", 0),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to open sqlite database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormModels.Migrate(db), "Failed to migrate sqlite database")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
