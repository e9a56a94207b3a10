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

const cacheKeyMaintenance = "records:maintenance"

// MaintenanceAdapter surfaces overdue and upcoming service appointments.
type MaintenanceAdapter struct {
	repo       repository.MaintenanceRepository
	accessor   *fetch.Accessor
	cacheTTL   time.Duration
	thresholds Thresholds
	log        logger.Logger
}

// NewMaintenanceAdapter creates a MaintenanceAdapter. repo may be nil when
// the maintenance module is disabled; the adapter then yields no alerts.
func NewMaintenanceAdapter(repo repository.MaintenanceRepository, accessor *fetch.Accessor, cacheTTL time.Duration, thresholds Thresholds, log logger.Logger) *MaintenanceAdapter {
	return &MaintenanceAdapter{repo: repo, accessor: accessor, cacheTTL: cacheTTL, thresholds: thresholds, log: log}
}

func (a *MaintenanceAdapter) Name() string { return "maintenance" }

// Fetch classifies scheduled maintenance against now: overdue is an
// error, due within the urgent window a warning, due within the reminder
// window an informational heads-up.
func (a *MaintenanceAdapter) Fetch(ctx context.Context, now time.Time) ([]Alert, error) {
	if a.repo == nil {
		a.log.Debug("maintenance adapter has no backing repository, skipping")
		return nil, nil
	}
	records, err := fetchRecords(ctx, a.accessor, cacheKeyMaintenance, a.cacheTTL, a.log, func(ctx context.Context) ([]entities.MaintenanceRecord, error) {
		return a.repo.ListScheduled(ctx)
	})
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for i := range records {
		rec := &records[i]
		remaining := rec.ScheduledAt.Sub(now)

		var alert Alert
		switch {
		case remaining < 0:
			alert = Alert{
				Severity: SeverityError,
				Priority: PriorityHigh,
				Title:    "Maintenance overdue",
				Message: fmt.Sprintf("%s for vehicle %s is overdue by %d days",
					rec.ServiceType, rec.PlateNumber, wholeDaysOverdue(-remaining)),
			}
		case remaining <= a.thresholds.MaintenanceUrgentWindow:
			alert = Alert{
				Severity: SeverityWarning,
				Priority: PriorityMedium,
				Title:    "Maintenance due tomorrow",
				Message: fmt.Sprintf("%s for vehicle %s is due in %.0f hours",
					rec.ServiceType, rec.PlateNumber, remaining.Hours()),
			}
		case remaining <= a.thresholds.MaintenanceReminderWindow:
			alert = Alert{
				Severity: SeverityInfo,
				Priority: PriorityMedium,
				Title:    "Maintenance upcoming",
				Message: fmt.Sprintf("%s for vehicle %s is due in %d days",
					rec.ServiceType, rec.PlateNumber, wholeDaysUntil(remaining)),
			}
		default:
			continue
		}

		alert.ID = AlertID(CategoryMaintenance, rec.ID)
		alert.Category = CategoryMaintenance
		alert.Source = a.Name()
		alert.CreatedAt = rec.ScheduledAt
		alert.Payload = map[string]any{
			"source_record_id": rec.ID,
			"vehicle_id":       rec.VehicleID,
			"plate_number":     rec.PlateNumber,
			"service_type":     rec.ServiceType,
			"scheduled_at":     rec.ScheduledAt,
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}
