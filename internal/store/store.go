// Package store holds the persistent steak and user records.
//
// A Store owns the current GORM handle and lends it to each operation, so a reset
// can replace the underlying database without restarting the process.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"steaklog/internal/config"
	"steaklog/internal/db"
	"steaklog/internal/domain"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUserExists is returned when registering a username that is taken.
	ErrUserExists = errors.New("user exists")
)

// Store is the store connection provider injected into handlers.
type Store struct {
	mu     sync.RWMutex
	db     *gorm.DB
	driver string
	dsn    string
	open   func(driver, dsn string) (*gorm.DB, error)
}

// New wraps an open and migrated handle.
func New(gdb *gorm.DB, driver, dsn string) *Store {
	return &Store{db: gdb, driver: driver, dsn: dsn, open: db.Open}
}

// Open connects to the configured store and applies pending migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	gdb, err := db.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, gdb, driver); err != nil {
		closeHandle(gdb)
		return nil, err
	}
	return New(gdb, driver, dsn), nil
}

// with runs fn against the current handle. The handle cannot be swapped by Reset
// until fn returns.
func (s *Store) with(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.db.WithContext(ctx))
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertEntry persists e and fills its ID and Timestamp.
func (s *Store) InsertEntry(ctx context.Context, e *domain.Steak) error {
	err := s.with(ctx, func(tx *gorm.DB) error {
		return tx.Create(e).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert steak: %w", err)
	}
	return nil
}

// ListEntries returns entries ordered by id ascending. An empty owner lists every entry.
func (s *Store) ListEntries(ctx context.Context, owner string) ([]domain.Steak, error) {
	steaks := make([]domain.Steak, 0)
	err := s.with(ctx, func(tx *gorm.DB) error {
		if owner != "" {
			tx = tx.Where("user_id = ?", owner)
		}
		return tx.Order("id asc").Find(&steaks).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select steaks: %w", err)
	}
	return steaks, nil
}

// GetEntry returns the entry with the given id.
func (s *Store) GetEntry(ctx context.Context, id uint) (*domain.Steak, error) {
	var steak domain.Steak
	err := s.with(ctx, func(tx *gorm.DB) error {
		return tx.First(&steak, id).Error
	})
	if err != nil {
		return nil, notFound(err, "failed to select steak")
	}
	return &steak, nil
}

// GetLatestEntry returns the entry with the highest id.
func (s *Store) GetLatestEntry(ctx context.Context) (*domain.Steak, error) {
	var steak domain.Steak
	err := s.with(ctx, func(tx *gorm.DB) error {
		return tx.Last(&steak).Error
	})
	if err != nil {
		return nil, notFound(err, "failed to select latest steak")
	}
	return &steak, nil
}

// DeleteEntry removes the entry with the given id and reports the rows affected.
func (s *Store) DeleteEntry(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := s.with(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Steak{}, id)
		n = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete steak: %w", err)
	}
	return n, nil
}

// DeleteAllEntries removes every entry.
func (s *Store) DeleteAllEntries(ctx context.Context) (int64, error) {
	var n int64
	err := s.with(ctx, func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Steak{})
		n = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete steaks: %w", err)
	}
	return n, nil
}

// InsertUser persists u. It returns ErrUserExists when the username is taken
// and never overwrites the existing record.
func (s *Store) InsertUser(ctx context.Context, u *domain.User) error {
	return s.with(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if count > 0 {
			return ErrUserExists
		}
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserExists
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
}

// GetUser returns the user with the given username, password hash included.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.with(ctx, func(tx *gorm.DB) error {
		return tx.Where("username = ?", username).First(&user).Error
	})
	if err != nil {
		return nil, notFound(err, "failed to select user")
	}
	return &user, nil
}

// ListUsers returns every user without the password hash, ordered by username ignoring case.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	err := s.with(ctx, func(tx *gorm.DB) error {
		return tx.Select("username", "name", "email").
			Order("LOWER(username) asc").
			Find(&users).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	return users, nil
}

// Reset wipes all persisted records. For SQLite the database file is removed and
// recreated from the migrations; other drivers have their tables emptied.
// Reset waits for in-flight operations and blocks new ones until it is done.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.driver != config.DriverSQLite {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
			if err := all.Delete(&domain.Steak{}).Error; err != nil {
				return fmt.Errorf("failed to delete steaks: %w", err)
			}
			if err := all.Delete(&domain.User{}).Error; err != nil {
				return fmt.Errorf("failed to delete users: %w", err)
			}
			return nil
		})
	}

	var errs []error
	closeHandle(s.db)
	for _, p := range []string{s.dsn, s.dsn + "-wal", s.dsn + "-shm", s.dsn + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
		}
	}

	gdb, err := s.open(s.driver, s.dsn)
	if err != nil {
		errs = append(errs, fmt.Errorf("reopen store: %w", err))
		// Retry once, the closed handle must not stay in service
		if gdb, err = s.open(s.driver, s.dsn); err != nil {
			return errors.Join(append(errs, fmt.Errorf("reopen store: %w", err))...)
		}
	}
	if err := db.Migrate(ctx, gdb, s.driver); err != nil {
		errs = append(errs, err)
	}
	s.db = gdb
	return errors.Join(errs...)
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func closeHandle(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
