package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/salamtime/rentalops/internal/datastore/entities"
)

// maintenanceRepository implements MaintenanceRepository.
type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new MaintenanceRepository.
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

// ListScheduled returns maintenance records still in scheduled state.
func (r *maintenanceRepository) ListScheduled(ctx context.Context) ([]entities.MaintenanceRecord, error) {
	var records []entities.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", entities.MaintenanceStatusScheduled).
		Order("scheduled_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled maintenance: %w", err)
	}
	return records, nil
}
