package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/salamtime/rentalops/internal/datastore/entities"
)

// rentalRepository implements RentalRepository.
type rentalRepository struct {
	db *gorm.DB
}

// NewRentalRepository creates a new RentalRepository.
func NewRentalRepository(db *gorm.DB) RentalRepository {
	return &rentalRepository{db: db}
}

// ListOpen returns rentals that are neither completed nor cancelled.
func (r *rentalRepository) ListOpen(ctx context.Context) ([]entities.Rental, error) {
	var rentals []entities.Rental
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{entities.RentalStatusCompleted, entities.RentalStatusCancelled}).
		Order("due_at ASC").
		Find(&rentals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open rentals: %w", err)
	}
	return rentals, nil
}
