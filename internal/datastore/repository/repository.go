// Package repository provides data access for the rental domain tables.
// Each interface covers one operational domain so callers depend only on
// the queries they actually issue.
package repository

import (
	"context"
	"errors"

	"github.com/salamtime/rentalops/internal/datastore/entities"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// FleetRepository reads fleet state.
type FleetRepository interface {
	// ListVehiclesWithFaults returns vehicles carrying an open fault code.
	ListVehiclesWithFaults(ctx context.Context) ([]entities.Vehicle, error)
	// ClearFault closes the open fault on a vehicle.
	ClearFault(ctx context.Context, vehicleID uint) error
}

// FuelRepository reads reported tank levels.
type FuelRepository interface {
	// ListLevels returns the latest fuel reading per vehicle.
	ListLevels(ctx context.Context) ([]entities.FuelLevel, error)
}

// MaintenanceRepository reads the service schedule.
type MaintenanceRepository interface {
	// ListScheduled returns maintenance records still in scheduled state.
	ListScheduled(ctx context.Context) ([]entities.MaintenanceRecord, error)
}

// RentalRepository reads rental agreements.
type RentalRepository interface {
	// ListOpen returns rentals that are neither completed nor cancelled.
	ListOpen(ctx context.Context) ([]entities.Rental, error)
}

// PriceOverrideRepository reads and resolves price override requests.
type PriceOverrideRepository interface {
	// ListPending returns override requests awaiting approval.
	ListPending(ctx context.Context) ([]entities.PriceOverride, error)
	// Resolve moves a pending request to approved or rejected.
	Resolve(ctx context.Context, id uint, status string) error
}

// PricingRepository reads and updates the published rate card.
type PricingRepository interface {
	ListPrices(ctx context.Context) ([]entities.PriceEntry, error)
	// UpsertPrice creates or replaces the rate card row for a vehicle class.
	UpsertPrice(ctx context.Context, entry *entities.PriceEntry) error
}
