package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// steakColumns holds the dialect specific statements of the owner and cook upgrade.
type steakColumns struct {
	hasColumn  string // counts columns by table and column name
	hasIndex   string // counts indexes by table and index name
	userColumn string
	cookColumn string
	dropIndex  string
}

var steakColumnDialects = map[string]steakColumns{
	"sqlite": {
		hasColumn:  `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		hasIndex:   `SELECT COUNT(*) FROM pragma_index_list(?) WHERE name = ?`,
		userColumn: `user_id TEXT NOT NULL DEFAULT ''`,
		cookColumn: `cook TEXT NOT NULL DEFAULT ''`,
		dropIndex:  `DROP INDEX IF EXISTS idx_steaks_user_id`,
	},
	"mysql": {
		hasColumn: `SELECT COUNT(*) FROM information_schema.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		hasIndex: `SELECT COUNT(*) FROM information_schema.STATISTICS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME = ?`,
		userColumn: `user_id VARCHAR(191) NOT NULL DEFAULT ''`,
		cookColumn: `cook VARCHAR(255) NOT NULL DEFAULT ''`,
		dropIndex:  `DROP INDEX idx_steaks_user_id ON steaks`,
	},
}

// Go returns the migrations written in Go for driver.
func Go(driver string) []*goose.Migration {
	d, ok := steakColumnDialects[driver]
	if !ok {
		return nil
	}
	return []*goose.Migration{
		goose.NewGoMigration(2,
			&goose.GoFunc{RunDB: d.up, Mode: goose.TransactionDisabled},
			&goose.GoFunc{RunDB: d.down, Mode: goose.TransactionDisabled},
		),
	}
}

// up adds the owner and cook columns and renames photo_filename to photo.
// Columns added by an earlier best-effort upgrade are kept and backfilled.
func (d steakColumns) up(ctx context.Context, db *sql.DB) error {
	for _, col := range []struct{ name, def string }{{"user_id", d.userColumn}, {"cook", d.cookColumn}} {
		exists, err := d.count(ctx, db, d.hasColumn, col.name)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, "ALTER TABLE steaks ADD COLUMN "+col.def); err != nil {
				return fmt.Errorf("add column %s: %w", col.name, err)
			}
			continue
		}
		// The earlier upgrade added the column as nullable
		if _, err := db.ExecContext(ctx, "UPDATE steaks SET "+col.name+" = '' WHERE "+col.name+" IS NULL"); err != nil {
			return fmt.Errorf("backfill column %s: %w", col.name, err)
		}
	}

	legacy, err := d.count(ctx, db, d.hasColumn, "photo_filename")
	if err != nil {
		return err
	}
	photo, err := d.count(ctx, db, d.hasColumn, "photo")
	if err != nil {
		return err
	}
	switch {
	case legacy && !photo:
		if _, err := db.ExecContext(ctx, "ALTER TABLE steaks RENAME COLUMN photo_filename TO photo"); err != nil {
			return fmt.Errorf("rename photo column: %w", err)
		}
	case !photo:
		if _, err := db.ExecContext(ctx, "ALTER TABLE steaks ADD COLUMN photo VARCHAR(255)"); err != nil {
			return fmt.Errorf("add column photo: %w", err)
		}
	}

	indexed, err := d.count(ctx, db, d.hasIndex, "idx_steaks_user_id")
	if err != nil {
		return err
	}
	if !indexed {
		if _, err := db.ExecContext(ctx, "CREATE INDEX idx_steaks_user_id ON steaks (user_id)"); err != nil {
			return fmt.Errorf("create owner index: %w", err)
		}
	}
	return nil
}

func (d steakColumns) down(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		d.dropIndex,
		"ALTER TABLE steaks RENAME COLUMN photo TO photo_filename",
		"ALTER TABLE steaks DROP COLUMN cook",
		"ALTER TABLE steaks DROP COLUMN user_id",
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

func (d steakColumns) count(ctx context.Context, db *sql.DB, query, name string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, query, "steaks", name).Scan(&n); err != nil {
		return false, fmt.Errorf("inspect steaks.%s: %w", name, err)
	}
	return n > 0, nil
}
