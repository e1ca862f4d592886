package db

import (
	"context"
	"path/filepath"
	"testing"

	"steaklog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Open(config.DriverSQLite, filepath.Join(t.TempDir(), "data", "steak.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func columns(t *testing.T, gdb *gorm.DB, table string) []string {
	t.Helper()
	cols, err := gdb.Migrator().ColumnTypes(table)
	require.NoError(t, err)
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name())
	}
	return names
}

func TestMigrate_CreatesSchema(t *testing.T) {
	gdb := openTestDB(t)

	require.NoError(t, Migrate(context.Background(), gdb, config.DriverSQLite))

	assert.True(t, gdb.Migrator().HasTable("steaks"))
	assert.True(t, gdb.Migrator().HasTable("users"))
	assert.ElementsMatch(t,
		[]string{"id", "type", "cost", "weight", "photo", "timestamp", "user_id", "cook"},
		columns(t, gdb, "steaks"))
	assert.ElementsMatch(t, []string{"username", "password", "name", "email"}, columns(t, gdb, "users"))
}

func TestMigrate_Idempotent(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, gdb, config.DriverSQLite))
	require.NoError(t, Migrate(ctx, gdb, config.DriverSQLite))
}

func TestMigrate_UpgradesLegacySteaksTable(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, gdb.Exec(`CREATE TABLE steaks
		(id INTEGER PRIMARY KEY AUTOINCREMENT, type TEXT, cost REAL, weight REAL, photo_filename TEXT, timestamp DATETIME DEFAULT CURRENT_TIMESTAMP)`).Error)
	require.NoError(t, gdb.Exec(`INSERT INTO steaks (type, cost, weight, photo_filename) VALUES ('ribeye', 12.5, 300, 'a.jpg')`).Error)

	require.NoError(t, Migrate(context.Background(), gdb, config.DriverSQLite))

	var row struct {
		Type  string
		Photo string
		User  string `gorm:"column:user_id"`
		Cook  string
	}
	require.NoError(t, gdb.Raw(`SELECT type, photo, user_id, cook FROM steaks WHERE id = 1`).Scan(&row).Error)
	assert.Equal(t, "ribeye", row.Type)
	assert.Equal(t, "a.jpg", row.Photo)
	assert.Empty(t, row.User)
	assert.Empty(t, row.Cook)
}

func TestMigrate_LegacyTableWithOwnerColumn(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, gdb.Exec(`CREATE TABLE steaks
		(id INTEGER PRIMARY KEY AUTOINCREMENT, type TEXT, cost REAL, weight REAL, photo_filename TEXT, timestamp DATETIME DEFAULT CURRENT_TIMESTAMP)`).Error)
	require.NoError(t, gdb.Exec(`ALTER TABLE steaks ADD COLUMN user_id TEXT`).Error)
	require.NoError(t, gdb.Exec(`INSERT INTO steaks (type, cost, weight, user_id) VALUES ('ribeye', 12.5, 300, 'alice')`).Error)
	require.NoError(t, gdb.Exec(`INSERT INTO steaks (type, cost, weight) VALUES ('sirloin', 9, 250)`).Error)

	require.NoError(t, Migrate(context.Background(), gdb, config.DriverSQLite))

	assert.ElementsMatch(t,
		[]string{"id", "type", "cost", "weight", "photo", "timestamp", "user_id", "cook"},
		columns(t, gdb, "steaks"))
	var owners []string
	require.NoError(t, gdb.Raw(`SELECT user_id FROM steaks ORDER BY id`).Scan(&owners).Error)
	assert.Equal(t, []string{"alice", ""}, owners)
	var cooks []string
	require.NoError(t, gdb.Raw(`SELECT cook FROM steaks ORDER BY id`).Scan(&cooks).Error)
	assert.Equal(t, []string{"", ""}, cooks)

	var version int64
	require.NoError(t, gdb.Raw(`SELECT MAX(version_id) FROM goose_db_version`).Scan(&version).Error)
	assert.Equal(t, int64(3), version)
}

func TestMigrate_UpgradeIsRepeatable(t *testing.T) {
	gdb := openTestDB(t)
	// A schema that already went through the owner and cook upgrade by hand
	require.NoError(t, gdb.Exec(`CREATE TABLE steaks
		(id INTEGER PRIMARY KEY AUTOINCREMENT, type TEXT, cost REAL, weight REAL, photo TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP, user_id TEXT NOT NULL DEFAULT '', cook TEXT NOT NULL DEFAULT '')`).Error)
	require.NoError(t, gdb.Exec(`CREATE INDEX idx_steaks_user_id ON steaks (user_id)`).Error)

	require.NoError(t, Migrate(context.Background(), gdb, config.DriverSQLite))

	assert.ElementsMatch(t,
		[]string{"id", "type", "cost", "weight", "photo", "timestamp", "user_id", "cook"},
		columns(t, gdb, "steaks"))
	assert.True(t, gdb.Migrator().HasIndex("steaks", "idx_steaks_user_id"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	assert.Error(t, err)
}

func TestMigrate_UnsupportedDriver(t *testing.T) {
	gdb := openTestDB(t)
	assert.Error(t, Migrate(context.Background(), gdb, "oracle"))
}
