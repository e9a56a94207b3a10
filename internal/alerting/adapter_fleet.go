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

const cacheKeyVehicleFaults = "records:vehicle_faults"

// FleetAdapter surfaces vehicles with open faults.
type FleetAdapter struct {
	repo     repository.FleetRepository
	accessor *fetch.Accessor
	cacheTTL time.Duration
	log      logger.Logger
}

// NewFleetAdapter creates a FleetAdapter. repo may be nil when fleet
// telemetry is not wired up; the adapter then yields no alerts.
func NewFleetAdapter(repo repository.FleetRepository, accessor *fetch.Accessor, cacheTTL time.Duration, log logger.Logger) *FleetAdapter {
	return &FleetAdapter{repo: repo, accessor: accessor, cacheTTL: cacheTTL, log: log}
}

func (a *FleetAdapter) Name() string { return "fleet" }

// Fetch flags every vehicle with an open fault. Critical faults and
// vehicles already pulled out of service escalate to high priority.
func (a *FleetAdapter) Fetch(ctx context.Context, _ time.Time) ([]Alert, error) {
	if a.repo == nil {
		a.log.Debug("fleet adapter has no backing repository, skipping")
		return nil, nil
	}
	vehicles, err := fetchRecords(ctx, a.accessor, cacheKeyVehicleFaults, a.cacheTTL, a.log, func(ctx context.Context) ([]entities.Vehicle, error) {
		return a.repo.ListVehiclesWithFaults(ctx)
	})
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for i := range vehicles {
		v := &vehicles[i]
		if !v.HasOpenFault() {
			continue
		}

		severity := SeverityWarning
		priority := PriorityMedium
		if v.FaultSeverity == entities.FaultSeverityCritical || v.Status == entities.VehicleStatusOutOfService {
			severity = SeverityError
			priority = PriorityHigh
		}

		createdAt := v.UpdatedAt
		if v.FaultReportedAt != nil {
			createdAt = *v.FaultReportedAt
		}

		alerts = append(alerts, Alert{
			ID:    AlertID(CategoryVehicle, v.ID),
			Title: "Vehicle fault reported",
			Message: fmt.Sprintf("Vehicle %s (%s) reported fault %s (%s)",
				v.PlateNumber, v.Model, v.FaultCode, v.FaultSeverity),
			Category:  CategoryVehicle,
			Severity:  severity,
			Priority:  priority,
			Source:    a.Name(),
			CreatedAt: createdAt,
			Payload: map[string]any{
				"source_record_id": v.ID,
				"plate_number":     v.PlateNumber,
				"fault_code":       v.FaultCode,
				"fault_severity":   v.FaultSeverity,
				"vehicle_status":   v.Status,
			},
		})
	}
	return alerts, nil
}
