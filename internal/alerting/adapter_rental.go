package alerting

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/salamtime/rentalops/internal/datastore/entities"
	"github.com/salamtime/rentalops/internal/datastore/repository"
	"github.com/salamtime/rentalops/internal/fetch"
	"github.com/salamtime/rentalops/internal/logger"
)

const cacheKeyRentals = "records:rentals"

// RentalAdapter surfaces overdue and due-soon rental returns.
type RentalAdapter struct {
	repo       repository.RentalRepository
	accessor   *fetch.Accessor
	cacheTTL   time.Duration
	thresholds Thresholds
	log        logger.Logger
}

// NewRentalAdapter creates a RentalAdapter. repo may be nil when the
// rentals module is disabled; the adapter then yields no alerts.
func NewRentalAdapter(repo repository.RentalRepository, accessor *fetch.Accessor, cacheTTL time.Duration, thresholds Thresholds, log logger.Logger) *RentalAdapter {
	return &RentalAdapter{repo: repo, accessor: accessor, cacheTTL: cacheTTL, thresholds: thresholds, log: log}
}

func (a *RentalAdapter) Name() string { return "rental" }

// Fetch classifies open rentals against now: past due is overdue, due
// within the due-soon window is due soon, anything else is quiet.
func (a *RentalAdapter) Fetch(ctx context.Context, now time.Time) ([]Alert, error) {
	if a.repo == nil {
		a.log.Debug("rental adapter has no backing repository, skipping")
		return nil, nil
	}
	rentals, err := fetchRecords(ctx, a.accessor, cacheKeyRentals, a.cacheTTL, a.log, func(ctx context.Context) ([]entities.Rental, error) {
		return a.repo.ListOpen(ctx)
	})
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for i := range rentals {
		r := &rentals[i]
		untilDue := r.DueAt.Sub(now)

		var alert Alert
		switch {
		case untilDue < 0:
			overdueBy := -untilDue
			hours := int(math.Ceil(overdueBy.Hours()))
			alert = Alert{
				Severity: SeverityError,
				Priority: PriorityHigh,
				Title:    "Rental return overdue",
				Message: fmt.Sprintf("Rental for %s (vehicle %s) is overdue by %d days (%d hours); amount due %.2f",
					r.CustomerName, r.PlateNumber, wholeDaysOverdue(overdueBy), hours, r.AmountDue()),
			}
		case untilDue <= a.thresholds.DueSoonWindow:
			alert = Alert{
				Severity: SeverityWarning,
				Priority: PriorityMedium,
				Title:    "Rental return due soon",
				Message: fmt.Sprintf("Rental for %s (vehicle %s) is due in %.0f hours; amount due %.2f",
					r.CustomerName, r.PlateNumber, untilDue.Hours(), r.AmountDue()),
			}
		default:
			continue
		}

		alert.ID = AlertID(CategoryRental, r.ID)
		alert.Category = CategoryRental
		alert.Source = a.Name()
		alert.CreatedAt = r.DueAt
		alert.Payload = map[string]any{
			"source_record_id": r.ID,
			"vehicle_id":       r.VehicleID,
			"plate_number":     r.PlateNumber,
			"due_at":           r.DueAt,
			"amount_due":       r.AmountDue(),
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}
