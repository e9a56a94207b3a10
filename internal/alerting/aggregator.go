package alerting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/salamtime/rentalops/internal/logger"
)

// AdapterFailure records one adapter that contributed nothing to a pass.
type AdapterFailure struct {
	Source string `json:"source"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// Aggregator fans out to all source adapters, merges their output into
// one classified list, and carries consumer flags across passes.
type Aggregator struct {
	adapters []SourceAdapter
	timeout  time.Duration
	log      logger.Logger
}

// NewAggregator creates an Aggregator over the given adapters. timeout
// bounds a whole pass so one hanging adapter cannot delay the rest
// indefinitely.
func NewAggregator(adapters []SourceAdapter, timeout time.Duration, log logger.Logger) *Aggregator {
	return &Aggregator{adapters: adapters, timeout: timeout, log: log}
}

// Aggregate runs one pass: concurrent adapter fan-out under a shared
// deadline, flatten, dedupe, merge of read/dismissed flags from previous
// state, deterministic sort. Adapter failures are returned alongside the
// list, never as an error; the pass completes with whatever the healthy
// adapters produced.
//
// Given identical adapter data, previous state, and now, the output is
// identical across runs.
func (g *Aggregator) Aggregate(ctx context.Context, now time.Time, previous map[string]Alert) ([]Alert, []AdapterFailure) {
	passID := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		idx    int
		source string
		alerts []Alert
		err    error
	}
	results := make(chan result, len(g.adapters))
	for i, adapter := range g.adapters {
		go func(idx int, a SourceAdapter) {
			alerts, err := a.Fetch(ctx, now)
			results <- result{idx: idx, source: a.Name(), alerts: alerts, err: err}
		}(i, adapter)
	}

	var (
		collected []Alert
		failures  []AdapterFailure
		// Keyed by slot rather than Name() so two adapters sharing a
		// name cannot mask each other's outcome.
		received = make([]bool, len(g.adapters))
	)
collect:
	for range g.adapters {
		select {
		case r := <-results:
			received[r.idx] = true
			if r.err != nil {
				g.log.Warn("adapter failed for this pass",
					logger.String("pass_id", passID),
					logger.String("source", r.source),
					logger.Error(r.err))
				failures = append(failures, AdapterFailure{
					Source: r.source,
					Err:    r.err,
					Reason: r.err.Error(),
				})
				continue
			}
			collected = append(collected, r.alerts...)
		case <-ctx.Done():
			break collect
		}
	}

	// Adapters that missed the pass deadline are abandoned, with a trace:
	// their contribution is simply absent this pass, never silently so.
	for i, adapter := range g.adapters {
		if received[i] {
			continue
		}
		g.log.Warn("adapter abandoned at pass deadline",
			logger.String("pass_id", passID),
			logger.String("source", adapter.Name()))
		failures = append(failures, AdapterFailure{
			Source: adapter.Name(),
			Err:    ctx.Err(),
			Reason: fmt.Sprintf("abandoned at pass deadline: %v", ctx.Err()),
		})
	}

	alerts := dedupe(collected)
	mergeFlags(alerts, previous)
	sortAlerts(alerts)
	return alerts, failures
}

// dedupe collapses duplicate IDs, keeping the higher severity; ties keep
// the more recent CreatedAt. Two overlapping rules reporting the same
// underlying event must not surface twice.
func dedupe(alerts []Alert) []Alert {
	index := make(map[string]int, len(alerts))
	out := make([]Alert, 0, len(alerts))
	for _, alert := range alerts {
		at, seen := index[alert.ID]
		if !seen {
			index[alert.ID] = len(out)
			out = append(out, alert)
			continue
		}
		existing := &out[at]
		if severityRank[alert.Severity] > severityRank[existing.Severity] ||
			(severityRank[alert.Severity] == severityRank[existing.Severity] && alert.CreatedAt.After(existing.CreatedAt)) {
			*existing = alert
		}
	}
	return out
}

// mergeFlags carries read/dismissed state from the previous pass onto
// matching IDs. Alerts new this pass stay unread and undismissed. The
// engine only ever copies these flags; it never computes them.
func mergeFlags(alerts []Alert, previous map[string]Alert) {
	if len(previous) == 0 {
		return
	}
	for i := range alerts {
		if prev, ok := previous[alerts[i].ID]; ok {
			alerts[i].Read = prev.Read
			alerts[i].Dismissed = prev.Dismissed
		}
	}
}

// sortAlerts orders by priority descending, then CreatedAt descending,
// then ID ascending. The ID tie-break makes the order a strict total
// order, so identical input always yields the identical sequence.
func sortAlerts(alerts []Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if priorityRank[alerts[i].Priority] != priorityRank[alerts[j].Priority] {
			return priorityRank[alerts[i].Priority] > priorityRank[alerts[j].Priority]
		}
		if !alerts[i].CreatedAt.Equal(alerts[j].CreatedAt) {
			return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
		}
		return alerts[i].ID < alerts[j].ID
	})
}
