// Package database opens the storage backend selected in the config.
package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/penline/core/internal/config"
	"github.com/penline/core/internal/store"
	"github.com/penline/core/internal/store/memory"
	mongostore "github.com/penline/core/internal/store/mongo"
	sqlstore "github.com/penline/core/internal/store/sql"
)

// Open connects to the configured driver and prepares its schema or indexes.
func Open(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (store.Store, error) {
	db := cfg.Database
	switch db.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on exit")
		return memory.New(), nil
	case config.DriverMySQL:
		return openMySQL(cfg)
	default:
		st, err := mongostore.Connect(ctx, db.MongoURI, db.Name)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return st, nil
	}
}

func openMySQL(cfg *config.AppConfig) (store.Store, error) {
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.Database.MySQLDSN(),
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(resolveLogLevel(cfg)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := sqlstore.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return sqlstore.New(gdb), nil
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}
