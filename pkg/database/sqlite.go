package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenLocal opens the embedded on-device database. The DSN is expected to
// carry WAL, busy_timeout and foreign_keys pragmas (config.Local.DSN does).
// A single writer connection avoids SQLITE_BUSY under concurrent mutation.
func OpenLocal(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("local db pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
