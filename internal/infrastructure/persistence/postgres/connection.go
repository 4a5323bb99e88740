// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/savvykitchen/savvy/internal/infrastructure/config"
	gormModels "github.com/savvykitchen/savvy/internal/infrastructure/persistence/gorm"
)

// ConnectionConfig holds connection pool configuration
type ConnectionConfig struct {
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	LogLevel           string
}

// DefaultConnectionConfig returns the default pool settings
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxOpenConns:       25,
		MaxIdleConns:       5,
		ConnMaxLifetime:    30 * time.Minute,
		ConnMaxIdleTime:    5 * time.Minute,
		SlowQueryThreshold: 100 * time.Millisecond,
		LogLevel:           "warn",
	}
}

// ConnectionManager owns the PostgreSQL connection pool
type ConnectionManager struct {
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
}

// NewConnectionManager opens, pings and migrates the database
func NewConnectionManager(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ConnectionManager, error) {
	connConfig := DefaultConnectionConfig()

	// Override defaults with config values
	if cfg.Database.MaxOpenConns > 0 {
		connConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns > 0 {
		connConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		connConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.LogLevel != "" {
		connConfig.LogLevel = cfg.Database.LogLevel
	}

	cm := &ConnectionManager{logger: log.Named("postgres")}
	if err := cm.open(ctx, cfg.GetDSN(), connConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}

	if err := gormModels.Migrate(cm.db); err != nil {
		_ = cm.Close()
		return nil, err
	}

	cm.logger.Info("Database connection manager initialized",
		zap.Int("max_open_conns", connConfig.MaxOpenConns),
		zap.Int("max_idle_conns", connConfig.MaxIdleConns),
		zap.Duration("conn_max_lifetime", connConfig.ConnMaxLifetime),
	)

	return cm, nil
}

func (cm *ConnectionManager) open(ctx context.Context, dsn string, config *ConnectionConfig) error {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormModels.NewLogger(cm.logger, config.LogLevel, config.SlowQueryThreshold),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		PrepareStmt:            true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.sqlDB = sqlDB
	return nil
}

// GetDB returns the main database connection
func (cm *ConnectionManager) GetDB() *gorm.DB {
	return cm.db
}

// Close closes the pool
func (cm *ConnectionManager) Close() error {
	if cm.sqlDB == nil {
		return nil
	}
	if err := cm.sqlDB.Close(); err != nil {
		cm.logger.Error("Failed to close database", zap.Error(err))
		return err
	}
	return nil
}
