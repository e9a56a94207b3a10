package alerting

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/salamtime/rentalops/internal/datastore/entities"
	"github.com/salamtime/rentalops/internal/fetch"
	"github.com/salamtime/rentalops/internal/logger"
)

// Shared fixtures for the alerting tests: silent logger, short-fuse
// accessor, fixed reference clock, and in-memory repositories.

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

func testAccessor() *fetch.Accessor {
	return fetch.New(fetch.Config{
		Timeout:     time.Second,
		MaxRetries:  0,
		BackoffBase: time.Millisecond,
		BackoffCap:  5 * time.Millisecond,
	}, testLogger())
}

type mockRentalRepo struct {
	rentals []entities.Rental
	err     error
	calls   atomic.Int32
}

func (m *mockRentalRepo) ListOpen(_ context.Context) ([]entities.Rental, error) {
	m.calls.Add(1)
	return m.rentals, m.err
}

type mockFuelRepo struct {
	levels []entities.FuelLevel
	err    error
}

func (m *mockFuelRepo) ListLevels(_ context.Context) ([]entities.FuelLevel, error) {
	return m.levels, m.err
}

type mockMaintenanceRepo struct {
	records []entities.MaintenanceRecord
	err     error
}

func (m *mockMaintenanceRepo) ListScheduled(_ context.Context) ([]entities.MaintenanceRecord, error) {
	return m.records, m.err
}

type mockFleetRepo struct {
	vehicles []entities.Vehicle
	err      error
}

func (m *mockFleetRepo) ListVehiclesWithFaults(_ context.Context) ([]entities.Vehicle, error) {
	return m.vehicles, m.err
}

func (m *mockFleetRepo) ClearFault(_ context.Context, _ uint) error {
	return errors.New("not implemented in mock")
}

type mockOverrideRepo struct {
	overrides []entities.PriceOverride
	err       error
}

func (m *mockOverrideRepo) ListPending(_ context.Context) ([]entities.PriceOverride, error) {
	return m.overrides, m.err
}

func (m *mockOverrideRepo) Resolve(_ context.Context, _ uint, _ string) error {
	return errors.New("not implemented in mock")
}

// staticAdapter returns a fixed answer, for aggregator and store tests
// that do not care about classification.
type staticAdapter struct {
	name   string
	alerts []Alert
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (s *staticAdapter) Name() string { return s.name }

func (s *staticAdapter) Fetch(ctx context.Context, _ time.Time) ([]Alert, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.alerts, s.err
}
