package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/salamtime/rentalops/internal/events"
	"github.com/salamtime/rentalops/internal/logger"
)

// Filter narrows the alert list returned to a consumer. Zero values match
// everything; dismissed alerts are hidden unless explicitly requested.
type Filter struct {
	Category         Category
	Priority         Priority
	Unread           *bool
	IncludeDismissed bool
}

func (f Filter) matches(a *Alert) bool {
	if a.Dismissed && !f.IncludeDismissed {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.Priority != "" && a.Priority != f.Priority {
		return false
	}
	if f.Unread != nil && a.Read == *f.Unread {
		return false
	}
	return true
}

// Store holds the latest aggregated alert snapshot plus per-alert
// read/dismissed flags, and notifies subscribers on every change.
type Store struct {
	aggregator *Aggregator
	hub        *events.Hub
	clock      func() time.Time
	log        logger.Logger

	mu          sync.RWMutex
	alerts      []Alert
	failures    []AdapterFailure
	lastRefresh time.Time

	// refreshMu guards inflight so concurrent Refresh calls coalesce
	// into the pass already running instead of starting a duplicate.
	refreshMu sync.Mutex
	inflight  chan struct{}

	autoStop chan struct{}
}

// NewStore creates a Store around the given aggregator. Events are
// published through hub, which may be nil when nobody subscribes.
func NewStore(aggregator *Aggregator, hub *events.Hub, log logger.Logger) *Store {
	return &Store{
		aggregator: aggregator,
		hub:        hub,
		clock:      time.Now,
		log:        log,
	}
}

// SetClock replaces the time source. Tests inject fixed clocks here.
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Refresh runs one aggregation pass and installs the result. A call made
// while a pass is already in flight waits for that pass instead of
// starting another; the only error it can return is the caller's own
// context expiring while waiting.
func (s *Store) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	if s.inflight != nil {
		done := s.inflight
		s.refreshMu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	s.inflight = done
	s.refreshMu.Unlock()

	defer func() {
		s.refreshMu.Lock()
		s.inflight = nil
		s.refreshMu.Unlock()
		close(done)
	}()

	now := s.clock()

	s.mu.RLock()
	previous := s.flagsByIDLocked()
	s.mu.RUnlock()

	alerts, failures := s.aggregator.Aggregate(ctx, now, previous)

	s.mu.Lock()
	// Re-merge against the live state before installing: a read or
	// dismiss issued while the pass was in flight landed on s.alerts
	// after the snapshot above was taken, and must not be reverted.
	mergeFlags(alerts, s.flagsByIDLocked())
	s.alerts = alerts
	s.failures = failures
	s.lastRefresh = now
	s.mu.Unlock()

	s.hub.Publish(events.NewEvent(events.TypeAlertsRefreshed, map[string]any{
		"count":   len(alerts),
		"partial": len(failures) > 0,
	}))
	return nil
}

// Alerts returns a copy of the current snapshot narrowed by filter,
// preserving the aggregator's ordering.
func (s *Store) Alerts(filter Filter) []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Alert, 0, len(s.alerts))
	for i := range s.alerts {
		if filter.matches(&s.alerts[i]) {
			out = append(out, s.alerts[i])
		}
	}
	return out
}

// MarkRead flags an alert as read. Unknown IDs and already-read alerts
// are no-ops, not errors.
func (s *Store) MarkRead(id string) {
	if s.setFlag(id, func(a *Alert) bool {
		if a.Read {
			return false
		}
		a.Read = true
		return true
	}) {
		s.hub.Publish(events.NewEvent(events.TypeAlertRead, map[string]any{"id": id}))
	}
}

// Dismiss hides an alert from default listings. Unknown IDs and
// already-dismissed alerts are no-ops, not errors.
func (s *Store) Dismiss(id string) {
	if s.setFlag(id, func(a *Alert) bool {
		if a.Dismissed {
			return false
		}
		a.Dismissed = true
		return true
	}) {
		s.hub.Publish(events.NewEvent(events.TypeAlertDismissed, map[string]any{"id": id}))
	}
}

// flagsByIDLocked indexes the current snapshot by alert ID. Callers must
// hold s.mu in at least read mode.
func (s *Store) flagsByIDLocked() map[string]Alert {
	byID := make(map[string]Alert, len(s.alerts))
	for _, a := range s.alerts {
		byID[a.ID] = a
	}
	return byID
}

// setFlag applies mutate to the alert with the given ID and reports
// whether anything changed.
func (s *Store) setFlag(id string, mutate func(*Alert) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			return mutate(&s.alerts[i])
		}
	}
	return false
}

// LastRefreshPartial reports whether the most recent pass lost adapters,
// and which ones. Diagnostic surfacing only; consumers still get the
// healthy adapters' alerts.
func (s *Store) LastRefreshPartial() (bool, []AdapterFailure) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.failures) == 0 {
		return false, nil
	}
	out := make([]AdapterFailure, len(s.failures))
	copy(out, s.failures)
	return true, out
}

// LastRefresh returns the now reference of the most recent pass.
func (s *Store) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// Subscribe registers a listener for store change events.
func (s *Store) Subscribe(buffer int) (<-chan events.Event, func()) {
	return s.hub.Subscribe(buffer)
}

// StartAutoRefresh launches a background goroutine refreshing every
// interval. An interval of 0 disables periodic refresh.
func (s *Store) StartAutoRefresh(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.stopAutoRefresh()
	s.mu.Lock()
	s.autoStop = make(chan struct{})
	stopCh := s.autoStop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Refresh(context.Background()); err != nil {
					s.log.Error("periodic refresh failed", logger.Error(err))
				}
			case <-stopCh:
				return
			}
		}
	}()
}

// stopAutoRefresh signals the refresh goroutine to exit. The
// nil-check-then-close runs under the lock so Stop and StartAutoRefresh
// cannot race into a double close.
func (s *Store) stopAutoRefresh() {
	s.mu.Lock()
	ch := s.autoStop
	s.autoStop = nil
	s.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// Stop shuts down background goroutines.
func (s *Store) Stop() {
	s.stopAutoRefresh()
}
