// Package datastore opens the backing database and runs migrations.
package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/salamtime/rentalops/internal/datastore/entities"
)

// Open connects to the configured database. Supported drivers are
// "sqlite" and "mysql".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return db, nil
}

// AutoMigrate creates or updates the domain tables.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Vehicle{},
		&entities.FuelLevel{},
		&entities.MaintenanceRecord{},
		&entities.Rental{},
		&entities.PriceOverride{},
		&entities.PriceEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
