package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/salamtime/rentalops/internal/datastore/entities"
)

// fuelRepository implements FuelRepository.
type fuelRepository struct {
	db *gorm.DB
}

// NewFuelRepository creates a new FuelRepository.
func NewFuelRepository(db *gorm.DB) FuelRepository {
	return &fuelRepository{db: db}
}

// ListLevels returns the latest fuel reading per vehicle.
func (r *fuelRepository) ListLevels(ctx context.Context) ([]entities.FuelLevel, error) {
	var levels []entities.FuelLevel
	if err := r.db.WithContext(ctx).Order("vehicle_id ASC").Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("failed to list fuel levels: %w", err)
	}
	return levels, nil
}
