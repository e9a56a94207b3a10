package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/salamtime/rentalops/internal/datastore/entities"
)

// fleetRepository implements FleetRepository.
type fleetRepository struct {
	db *gorm.DB
}

// NewFleetRepository creates a new FleetRepository.
func NewFleetRepository(db *gorm.DB) FleetRepository {
	return &fleetRepository{db: db}
}

// ListVehiclesWithFaults returns vehicles carrying an open fault code.
func (r *fleetRepository) ListVehiclesWithFaults(ctx context.Context) ([]entities.Vehicle, error) {
	var vehicles []entities.Vehicle
	err := r.db.WithContext(ctx).
		Where("fault_code <> ''").
		Order("id ASC").
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles with faults: %w", err)
	}
	return vehicles, nil
}

// ClearFault closes the open fault on a vehicle.
func (r *fleetRepository) ClearFault(ctx context.Context, vehicleID uint) error {
	result := r.db.WithContext(ctx).Model(&entities.Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(map[string]any{
			"fault_code":        "",
			"fault_severity":    "",
			"fault_reported_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to clear fault on vehicle %d: %w", vehicleID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
