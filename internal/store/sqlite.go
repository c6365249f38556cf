package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type kvRecord struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	ExpiresAt *time.Time
}

func (kvRecord) TableName() string { return "kv_records" }

// SQLite persists values as rows of a single key/value table. SQLite
// serializes writers, which makes SetNX atomic enough for the lock record.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path. Use ":memory:" in tests.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var rec kvRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.expired() {
		s.db.WithContext(ctx).Delete(&kvRecord{}, "key = ?", key)
		return nil, ErrNotFound
	}
	return rec.Value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	rec := kvRecord{Key: key, Value: value}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
}

func (s *SQLite) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	acquired := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing kvRecord
		err := tx.First(&existing, "key = ?", key).Error
		switch {
		case err == nil:
			if !existing.expired() {
				return nil
			}
			if err := tx.Delete(&kvRecord{}, "key = ?", key).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		rec := kvRecord{Key: key, Value: value}
		if ttl > 0 {
			exp := time.Now().Add(ttl)
			rec.ExpiresAt = &exp
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		acquired = true
		return nil
	})
	return acquired, err
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&kvRecord{}, "key = ?", key).Error
}

func (r kvRecord) expired() bool {
	return r.ExpiresAt != nil && time.Now().After(*r.ExpiresAt)
}
