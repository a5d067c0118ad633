package storage

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// entry is a single row of the key-value table
type entry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv_entries" }

// GormStore keeps values in a SQL database through gorm.  One row per key.
type GormStore struct {
	db     *gorm.DB
	closed atomic.Bool
}

// OpenSQLite opens (creating if needed) a sqlite database at dsn
func OpenSQLite(dsn string) (*GormStore, error) {
	return openGorm(sqlite.Open(dsn))
}

// OpenPostgres connects to the postgres database described by dsn
func OpenPostgres(dsn string) (*GormStore, error) {
	return openGorm(postgres.Open(dsn))
}

func openGorm(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an already opened database, migrating the key-value table if necessary
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("unable to migrate key-value table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	var e entry
	err := s.db.Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("unable to read key %q: %w", key, err)
	}
	return []byte(e.Value), true, nil
}

func (s *GormStore) Set(key string, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	e := entry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("unable to write key %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.  Only the first call does anything.
func (s *GormStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
