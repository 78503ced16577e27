package database

import (
	"fmt"

	"copytrade-scanner-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase opens the catalog store and performs auto-migration.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the trader table, including the uniqueness
// constraint on (exchange_name, exchange_uid) that the synchronizer's upsert
// relies on as its conflict target. Existing rows are preserved; only a sync
// run with replacement data in hand is allowed to wipe the catalog.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.TraderRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
