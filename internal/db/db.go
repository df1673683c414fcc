package db

import (
	"fmt"  // Error wrapping
	"time" // Connection lifetimes

	"budget_ledger/internal/config" // Driver selection

	"gorm.io/driver/mysql"  // MySQL driver for GORM
	"gorm.io/driver/sqlite" // SQLite driver for GORM
	"gorm.io/gorm"          // GORM ORM library
	"gorm.io/gorm/logger"   // GORM logger levels
)

// Open connects to the configured database
func Open(driver, dsn string, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector // Driver specific dialector
	switch driver {
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	gormLogger := logger.Default.LogMode(logger.Silent) // Quiet unless asked
	if verbose {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true, // Map unique violations to gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if driver == config.DriverSQLite {
		// SQLite allows one writer; a single connection serializes transactions
		sqlDB.SetMaxOpenConns(1)
		_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	} else {
		sqlDB.SetMaxOpenConns(10)           // Connection pool size
		sqlDB.SetMaxIdleConns(5)            // Idle connections kept
		sqlDB.SetConnMaxLifetime(time.Hour) // Recycle connections hourly
	}
	return db, nil
}

// OpenMemory opens a migrated in-memory SQLite database
func OpenMemory() (*gorm.DB, error) {
	db, err := Open(config.DriverSQLite, ":memory:", false)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
