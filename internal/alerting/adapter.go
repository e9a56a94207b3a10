package alerting

import (
	"context"
	"math"
	"time"

	"github.com/salamtime/rentalops/internal/fetch"
	"github.com/salamtime/rentalops/internal/logger"
)

// SourceAdapter translates one domain's raw records into canonical alerts.
// Fetch classifies against the single now value shared by the whole
// aggregation pass, never against ad hoc wall-clock reads, so one pass
// cannot classify two records against different clocks.
//
// An adapter with a missing backing resource returns an empty list, not an
// error: alerting must not hard-fail because one optional subsystem is
// down. Errors are reserved for fetch failures the aggregator should
// report as partial.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, now time.Time) ([]Alert, error)
}

// Thresholds holds the time windows and limits the adapters classify
// against. Injected from configuration so operational policy can change
// without touching classification code.
type Thresholds struct {
	// DueSoonWindow flags open rentals due within this span.
	DueSoonWindow time.Duration
	// MaintenanceUrgentWindow escalates maintenance due within this span.
	MaintenanceUrgentWindow time.Duration
	// MaintenanceReminderWindow surfaces maintenance due within this span.
	MaintenanceReminderWindow time.Duration
	// LowFuelThresholdPct flags tanks at or below this percentage;
	// half of it escalates to high priority.
	LowFuelThresholdPct float64
	// ApprovalEscalationWindow escalates override requests pending longer
	// than this span.
	ApprovalEscalationWindow time.Duration
}

// DefaultThresholds mirror the configuration defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DueSoonWindow:             48 * time.Hour,
		MaintenanceUrgentWindow:   24 * time.Hour,
		MaintenanceReminderWindow: 7 * 24 * time.Hour,
		LowFuelThresholdPct:       20,
		ApprovalEscalationWindow:  24 * time.Hour,
	}
}

// wholeDaysOverdue converts how long something has been overdue into whole
// days, rounding up: one minute past due already counts as 1 day.
func wholeDaysOverdue(overdueBy time.Duration) int {
	return int(math.Ceil(overdueBy.Hours() / 24))
}

// wholeDaysUntil converts the time remaining before a deadline into whole
// days, truncating, so "due in 0 days" means due within the next 24 hours.
func wholeDaysUntil(remaining time.Duration) int {
	return int(remaining.Hours() / 24)
}

// fetchRecords loads records through the accessor. When the fetch fails
// but a stale copy of the last successful result exists, the stale copy is
// served so one flaky backend degrades to old data instead of no data.
func fetchRecords[T any](ctx context.Context, accessor *fetch.Accessor, key string, ttl time.Duration, log logger.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	records, err := fetch.GetOrFetch(ctx, accessor, key, ttl, fn)
	if err != nil {
		if stale, ok := fetch.Stale[T](accessor, key); ok {
			log.Warn("serving stale records after fetch failure",
				logger.String("key", key),
				logger.Error(err))
			return stale, nil
		}
		var zero T
		return zero, err
	}
	return records, nil
}
