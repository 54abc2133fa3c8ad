package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one stored key. Values are JSON documents: postgres keeps them as
// jsonb, so it rejects non-JSON values on write and returns them re-encoded
// (key order and whitespace are not preserved).
type Entry struct {
	Key       string         `gorm:"primaryKey;size:191"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for Entry
func (Entry) TableName() string {
	return "kv_entries"
}

// GormStore keeps entries in a single table of a gorm database. Values must
// be JSON, see Entry.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db. The kv_entries table must exist, see Migrate.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the kv_entries table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate kv entries: %w", err)
	}
	return nil
}

// Get returns the value stored under key
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return []byte(entry.Value), nil
}

// Set inserts or replaces the value stored under key
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	if err := upsert(s.db.WithContext(ctx), key, value); err != nil {
		return fmt.Errorf("failed to set entry: %w", err)
	}
	return nil
}

// SetBatch writes every entry inside one transaction
func (s *GormStore) SetBatch(ctx context.Context, entries map[string][]byte) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range sortedKeys(entries) {
			if err := upsert(tx, key, entries[key]); err != nil {
				return fmt.Errorf("failed to set %q: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}

func upsert(db *gorm.DB, key string, value []byte) error {
	entry := Entry{
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now(),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
