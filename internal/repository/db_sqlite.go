// Package repository contains the repository layer for the NSE Metrics API
package repository

import (
	"fmt"

	"github.com/marketbots/nsemetricsapi/internal/config"
	"github.com/marketbots/nsemetricsapi/internal/models"
	"github.com/marketbots/nsemetricsapi/pkg/utils/zaplogger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectSqlite opens the SQLite database file and returns a GORM database object.
// The handle is shared by every repository; SQLite's file locking is the only
// mutual exclusion between the ingestion job and the read path.
func ConnectSqlite(cfg *config.Config) (*gorm.DB, error) {
	zaplogger.Info(config.SingleLine)
	zaplogger.Info("Initializing SQLite")
	zaplogger.Info(config.SingleLine)

	// Set up GORM logger
	var logLevel logger.LogLevel
	switch cfg.SqliteLogLevel {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	case "info":
		logLevel = logger.Info
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	db, err := gorm.Open(sqlite.Open(cfg.SqliteDbPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %v", err)
	}

	zaplogger.Info("  * connected: \"" + cfg.SqliteDbPath + "\"")

	// AutoMigrate will create tables and add/modify columns
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %v", err)
	}

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	tables := []struct {
		name  string
		model interface{}
	}{
		{models.InstrumentsTableName, &models.InstrumentModel{}},
		{models.SessionsTableName, &models.SessionModel{}},
		{models.VolumeSplitTableName, &models.VolumeSplitModel{}},
	}

	zaplogger.Info("  * migrating tables")
	for _, table := range tables {
		if err := db.AutoMigrate(table.model); err != nil {
			return fmt.Errorf("failed to auto migrate table: %s, err:%v", table.name, err)
		}
		zaplogger.Info("    - \"" + table.name + "\"")
	}

	return nil
}
