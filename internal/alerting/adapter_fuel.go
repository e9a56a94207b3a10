package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/salamtime/rentalops/internal/datastore/entities"
	"github.com/salamtime/rentalops/internal/datastore/repository"
	"github.com/salamtime/rentalops/internal/fetch"
	"github.com/salamtime/rentalops/internal/logger"
)

const cacheKeyFuelLevels = "records:fuel_levels"

// FuelAdapter surfaces vehicles running low on fuel.
type FuelAdapter struct {
	repo       repository.FuelRepository
	accessor   *fetch.Accessor
	cacheTTL   time.Duration
	thresholds Thresholds
	log        logger.Logger
}

// NewFuelAdapter creates a FuelAdapter. repo may be nil when fuel
// telemetry is not wired up; the adapter then yields no alerts.
func NewFuelAdapter(repo repository.FuelRepository, accessor *fetch.Accessor, cacheTTL time.Duration, thresholds Thresholds, log logger.Logger) *FuelAdapter {
	return &FuelAdapter{repo: repo, accessor: accessor, cacheTTL: cacheTTL, thresholds: thresholds, log: log}
}

func (a *FuelAdapter) Name() string { return "fuel" }

// Fetch flags tanks at or below the low-fuel threshold. At or below half
// the threshold the alert escalates to high priority.
func (a *FuelAdapter) Fetch(ctx context.Context, _ time.Time) ([]Alert, error) {
	if a.repo == nil {
		a.log.Debug("fuel adapter has no backing repository, skipping")
		return nil, nil
	}
	levels, err := fetchRecords(ctx, a.accessor, cacheKeyFuelLevels, a.cacheTTL, a.log, func(ctx context.Context) ([]entities.FuelLevel, error) {
		return a.repo.ListLevels(ctx)
	})
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for i := range levels {
		level := &levels[i]
		if level.CapacityLiters <= 0 {
			a.log.Warn("skipping fuel record with non-positive tank capacity",
				logger.Int64("vehicle_id", int64(level.VehicleID)),
				logger.Float64("capacity_liters", level.CapacityLiters))
			continue
		}
		pct := level.Percent()
		if pct > a.thresholds.LowFuelThresholdPct {
			continue
		}

		severity := SeverityWarning
		priority := PriorityMedium
		title := "Fuel level low"
		if pct <= a.thresholds.LowFuelThresholdPct/2 {
			severity = SeverityError
			priority = PriorityHigh
			title = "Fuel level critical"
		}

		alerts = append(alerts, Alert{
			ID:       AlertID(CategoryFuel, level.VehicleID),
			Title:    title,
			Message: fmt.Sprintf("Vehicle %s is at %.1f%% fuel (%.1f of %.1f liters)",
				level.PlateNumber, pct, level.CurrentLiters, level.CapacityLiters),
			Category:  CategoryFuel,
			Severity:  severity,
			Priority:  priority,
			Source:    a.Name(),
			CreatedAt: level.RecordedAt,
			Payload: map[string]any{
				"source_record_id": level.ID,
				"vehicle_id":       level.VehicleID,
				"plate_number":     level.PlateNumber,
				"fuel_percent":     pct,
				"current_liters":   level.CurrentLiters,
			},
		})
	}
	return alerts, nil
}
