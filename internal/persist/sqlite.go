package persist

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRecord is one row of the slots table.
type slotRecord struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (slotRecord) TableName() string { return "slots" }

// SQLite stores the blob as a row keyed by the slot name.
type SQLite struct {
	db  *gorm.DB
	key string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path, key string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("persist: open sqlite: %w", err)
	}
	return NewSQLite(db, key)
}

// NewSQLite wraps an existing gorm connection and migrates the slots table.
func NewSQLite(db *gorm.DB, key string) (*SQLite, error) {
	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("persist: migrate slots: %w", err)
	}
	return &SQLite{db: db, key: key}, nil
}

func (s *SQLite) Read() ([]byte, error) {
	var rec slotRecord
	if err := s.db.First(&rec, "name = ?", s.key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("persist: read slot: %w", err)
	}
	return []byte(rec.Value), nil
}

func (s *SQLite) Write(b []byte) error {
	rec := slotRecord{Name: s.key, Value: string(b), UpdatedAt: time.Now().UTC()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("persist: write slot: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
