package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salamtime/rentalops/internal/datastore/entities"
)

// pricingRepository implements PricingRepository.
type pricingRepository struct {
	db *gorm.DB
}

// NewPricingRepository creates a new PricingRepository.
func NewPricingRepository(db *gorm.DB) PricingRepository {
	return &pricingRepository{db: db}
}

// ListPrices returns the full rate card.
func (r *pricingRepository) ListPrices(ctx context.Context) ([]entities.PriceEntry, error) {
	var entries []entities.PriceEntry
	if err := r.db.WithContext(ctx).Order("vehicle_class ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list price entries: %w", err)
	}
	return entries, nil
}

// UpsertPrice creates or replaces the rate card row for a vehicle class.
func (r *pricingRepository) UpsertPrice(ctx context.Context, entry *entities.PriceEntry) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vehicle_class"}},
			UpdateAll: true,
		}).
		Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert price for class %s: %w", entry.VehicleClass, err)
	}
	return nil
}
