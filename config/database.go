package config

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/an-furnish/furnish-api/logger"
)

// ConnectDatabase opens the relational store selected by cfg.StoreDriver
func ConnectDatabase(cfg *Config, logg *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("store driver %q is not a relational database", cfg.StoreDriver)
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.StoreDriver == DriverSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logg.Info(logg.WithField(context.Background(), "driver", cfg.StoreDriver), "database connection established")
	return db, nil
}
