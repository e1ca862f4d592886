package db

import (
	"context" // Context for migration queries
	"fmt"     // Error wrapping
	"io/fs"   // Per driver migration directory

	"steaklog/internal/config"        // Driver names
	"steaklog/internal/db/migrations" // Versioned migrations

	"github.com/pressly/goose/v3" // Versioned migrations
	"github.com/sirupsen/logrus"  // Logrus for structured logging
	"gorm.io/gorm"                // GORM ORM library
)

// gooseDialect maps a store driver to its goose dialect
func gooseDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	case config.DriverMySQL:
		return goose.DialectMySQL, nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}
}

// Migrate applies every pending versioned migration for the driver.
// Migrations live in migrations/<driver> and are applied in order exactly once.
func Migrate(ctx context.Context, gdb *gorm.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB() // Goose works on the underlying *sql.DB
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	fsys, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, sqlDB, fsys, goose.WithGoMigrations(migrations.Go(driver)...))
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		logrus.WithFields(logrus.Fields{
			"version":  r.Source.Version, // Migration version
			"duration": r.Duration,       // Time spent applying it
		}).Info("Applied migration")
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"driver": driver,      // Store driver
			"error":  err.Error(), // Error message
		}).Error("Migration failed")
		return fmt.Errorf("run migrations: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"driver":  driver,  // Store driver
		"version": version, // Schema version after migrating
	}).Info("Migration completed.")
	return nil
}
