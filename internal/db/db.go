package db

import (
	"fmt"           // Error wrapping
	"os"            // Directory creation
	"path/filepath" // Path manipulation
	"time"          // Pool lifetimes

	"steaklog/internal/config" // Driver names

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger
)

// Open connects to the store for the given driver and data source name
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case config.DriverSQLite:
		// The database file lives in its own directory which may not exist yet
		if dir := filepath.Dir(dsn); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		gdb, err := OpenDialector(sqlite.Open(dsn))
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
		_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
		_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")
		return gdb, nil
	case config.DriverMySQL:
		return OpenDialector(mysql.Open(dsn))
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// OpenDialector opens a GORM handle with the settings shared by every driver
func OpenDialector(dialector gorm.Dialector) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // Surface duplicate keys as gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now().UTC() // Timestamps are stored in UTC
		},
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return gdb, nil
}
