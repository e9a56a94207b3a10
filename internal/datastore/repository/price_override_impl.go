package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/salamtime/rentalops/internal/datastore/entities"
)

// priceOverrideRepository implements PriceOverrideRepository.
type priceOverrideRepository struct {
	db *gorm.DB
}

// NewPriceOverrideRepository creates a new PriceOverrideRepository.
func NewPriceOverrideRepository(db *gorm.DB) PriceOverrideRepository {
	return &priceOverrideRepository{db: db}
}

// ListPending returns override requests awaiting approval.
func (r *priceOverrideRepository) ListPending(ctx context.Context) ([]entities.PriceOverride, error) {
	var overrides []entities.PriceOverride
	err := r.db.WithContext(ctx).
		Where("status = ?", entities.OverrideStatusPending).
		Order("requested_at ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending price overrides: %w", err)
	}
	return overrides, nil
}

// Resolve moves a pending request to approved or rejected.
func (r *priceOverrideRepository) Resolve(ctx context.Context, id uint, status string) error {
	if status != entities.OverrideStatusApproved && status != entities.OverrideStatusRejected {
		return fmt.Errorf("invalid resolution status %q", status)
	}
	result := r.db.WithContext(ctx).Model(&entities.PriceOverride{}).
		Where("id = ? AND status = ?", id, entities.OverrideStatusPending).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to resolve price override %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
