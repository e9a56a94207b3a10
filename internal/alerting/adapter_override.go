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

const cacheKeyPriceOverrides = "records:price_overrides"

// OverrideAdapter surfaces price override requests waiting for approval.
type OverrideAdapter struct {
	repo       repository.PriceOverrideRepository
	accessor   *fetch.Accessor
	cacheTTL   time.Duration
	thresholds Thresholds
	log        logger.Logger
}

// NewOverrideAdapter creates an OverrideAdapter. repo may be nil when the
// pricing module is disabled; the adapter then yields no alerts.
func NewOverrideAdapter(repo repository.PriceOverrideRepository, accessor *fetch.Accessor, cacheTTL time.Duration, thresholds Thresholds, log logger.Logger) *OverrideAdapter {
	return &OverrideAdapter{repo: repo, accessor: accessor, cacheTTL: cacheTTL, thresholds: thresholds, log: log}
}

func (a *OverrideAdapter) Name() string { return "price_approval" }

// InvalidateCache drops the cached pending-override records so the next
// pass re-reads them. Called after an override is approved or rejected,
// otherwise the resolved request keeps alerting until the TTL runs out.
func (a *OverrideAdapter) InvalidateCache() {
	a.accessor.Invalidate(cacheKeyPriceOverrides)
}

// Fetch lists pending override requests. Requests pending longer than the
// escalation window climb from a low-priority note to a warning.
func (a *OverrideAdapter) Fetch(ctx context.Context, now time.Time) ([]Alert, error) {
	if a.repo == nil {
		a.log.Debug("override adapter has no backing repository, skipping")
		return nil, nil
	}
	overrides, err := fetchRecords(ctx, a.accessor, cacheKeyPriceOverrides, a.cacheTTL, a.log, func(ctx context.Context) ([]entities.PriceOverride, error) {
		return a.repo.ListPending(ctx)
	})
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for i := range overrides {
		o := &overrides[i]
		pendingFor := now.Sub(o.RequestedAt)

		severity := SeverityInfo
		priority := PriorityLow
		title := "Price override awaiting approval"
		if pendingFor > a.thresholds.ApprovalEscalationWindow {
			severity = SeverityWarning
			priority = PriorityMedium
			title = "Price override approval overdue"
		}

		alerts = append(alerts, Alert{
			ID:    AlertID(CategoryPriceApproval, o.ID),
			Title: title,
			Message: fmt.Sprintf("%s requested %.2f instead of %.2f for class %s, pending for %.0f hours",
				o.RequestedBy, o.ProposedRate, o.CurrentRate, o.VehicleClass, pendingFor.Hours()),
			Category:  CategoryPriceApproval,
			Severity:  severity,
			Priority:  priority,
			Source:    a.Name(),
			CreatedAt: o.RequestedAt,
			Payload: map[string]any{
				"source_record_id": o.ID,
				"vehicle_class":    o.VehicleClass,
				"requested_by":     o.RequestedBy,
				"proposed_rate":    o.ProposedRate,
				"current_rate":     o.CurrentRate,
			},
		})
	}
	return alerts, nil
}
