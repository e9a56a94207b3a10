// Package pricing serves the published rate card and handles the price
// override approval flow.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salamtime/rentalops/internal/datastore/entities"
	"github.com/salamtime/rentalops/internal/datastore/repository"
	"github.com/salamtime/rentalops/internal/fetch"
	"github.com/salamtime/rentalops/internal/logger"
)

const cacheKeyRateCard = "pricing:rate_card"

// ErrUnknownClass is returned when no rate card row exists for a class.
var ErrUnknownClass = errors.New("unknown vehicle class")

// Quote is a priced rental request.
type Quote struct {
	VehicleClass string  `json:"vehicle_class"`
	Days         int     `json:"days"`
	RentalAmount float64 `json:"rental_amount"`
	TransportKm  float64 `json:"transport_km"`
	TransportFee float64 `json:"transport_fee"`
	Total        float64 `json:"total"`
}

// Service answers rate lookups through the shared accessor and mutates
// the rate card and override queue through the repositories.
type Service struct {
	prices    repository.PricingRepository
	overrides repository.PriceOverrideRepository
	accessor  *fetch.Accessor
	cacheTTL  time.Duration
	log       logger.Logger

	// onOverrideResolved runs after an override changes status, so the
	// alert feed can drop its cached pending list. Optional.
	onOverrideResolved func()
}

// NewService creates a pricing Service.
func NewService(prices repository.PricingRepository, overrides repository.PriceOverrideRepository, accessor *fetch.Accessor, cacheTTL time.Duration, log logger.Logger) *Service {
	return &Service{
		prices:    prices,
		overrides: overrides,
		accessor:  accessor,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

// OnOverrideResolved registers a callback invoked after ResolveOverride
// succeeds.
func (s *Service) OnOverrideResolved(fn func()) {
	s.onOverrideResolved = fn
}

// RateCard returns the published rate card. Reads go through the
// accessor, so a database hiccup degrades to the last known card.
func (s *Service) RateCard(ctx context.Context) ([]entities.PriceEntry, error) {
	entries, err := fetch.GetOrFetch(ctx, s.accessor, cacheKeyRateCard, s.cacheTTL, func(ctx context.Context) ([]entities.PriceEntry, error) {
		return s.prices.ListPrices(ctx)
	})
	if err != nil {
		if stale, ok := fetch.Stale[[]entities.PriceEntry](s.accessor, cacheKeyRateCard); ok {
			s.log.Warn("serving stale rate card after fetch failure", logger.Error(err))
			return stale, nil
		}
		return nil, err
	}
	return entries, nil
}

// RateFor returns the rate card row for one vehicle class.
func (s *Service) RateFor(ctx context.Context, vehicleClass string) (*entities.PriceEntry, error) {
	entries, err := s.RateCard(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].VehicleClass == vehicleClass {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownClass, vehicleClass)
}

// Quote prices a rental of the given length plus an optional vehicle
// transport of transportKm kilometers. Whole weeks are billed at the
// weekly rate; leftover days never cost more than another week.
func (s *Service) Quote(ctx context.Context, vehicleClass string, days int, transportKm float64) (*Quote, error) {
	if days <= 0 {
		return nil, fmt.Errorf("rental length must be positive, got %d days", days)
	}
	if transportKm < 0 {
		return nil, fmt.Errorf("transport distance must not be negative, got %.1f km", transportKm)
	}
	entry, err := s.RateFor(ctx, vehicleClass)
	if err != nil {
		return nil, err
	}

	weeks := days / 7
	remainder := float64(days%7) * entry.DailyRate
	if remainder > entry.WeeklyRate {
		remainder = entry.WeeklyRate
	}
	rental := float64(weeks)*entry.WeeklyRate + remainder
	transport := transportKm * entry.TransportFeePerKm

	return &Quote{
		VehicleClass: vehicleClass,
		Days:         days,
		RentalAmount: rental,
		TransportKm:  transportKm,
		TransportFee: transport,
		Total:        rental + transport,
	}, nil
}

// UpsertRate publishes a rate card row and drops the cached card so the
// next read sees it.
func (s *Service) UpsertRate(ctx context.Context, entry *entities.PriceEntry) error {
	if entry.VehicleClass == "" {
		return errors.New("vehicle class is required")
	}
	if entry.DailyRate <= 0 || entry.WeeklyRate <= 0 {
		return errors.New("daily and weekly rates must be positive")
	}
	if err := s.prices.UpsertPrice(ctx, entry); err != nil {
		return err
	}
	s.accessor.Invalidate(cacheKeyRateCard)
	s.log.Info("rate card updated",
		logger.String("vehicle_class", entry.VehicleClass),
		logger.Float64("daily_rate", entry.DailyRate))
	return nil
}

// ResolveOverride approves or rejects a pending price override request.
func (s *Service) ResolveOverride(ctx context.Context, id uint, approve bool) error {
	status := entities.OverrideStatusRejected
	if approve {
		status = entities.OverrideStatusApproved
	}
	if err := s.overrides.Resolve(ctx, id, status); err != nil {
		return fmt.Errorf("failed to resolve price override %d: %w", id, err)
	}
	s.log.Info("price override resolved",
		logger.Uint64("override_id", uint64(id)),
		logger.String("status", status))
	if s.onOverrideResolved != nil {
		s.onOverrideResolved()
	}
	return nil
}
