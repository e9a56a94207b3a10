package alerting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salamtime/rentalops/internal/events"
)

func newTestStore(t *testing.T, adapters ...SourceAdapter) *Store {
	t.Helper()
	agg := NewAggregator(adapters, time.Second, testLogger())
	store := NewStore(agg, events.NewHub(), testLogger())
	store.SetClock(func() time.Time { return testNow })
	return store
}

func drainEvents(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestStoreRefreshInstallsSnapshot(t *testing.T) {
	t.Parallel()

	adapter := &staticAdapter{name: "a", alerts: []Alert{
		{ID: "rental:1", Category: CategoryRental, Priority: PriorityHigh, CreatedAt: testNow},
		{ID: "fuel:1", Category: CategoryFuel, Priority: PriorityLow, CreatedAt: testNow},
	}}
	store := newTestStore(t, adapter)

	sub, unsub := store.Subscribe(4)
	defer unsub()

	require.NoError(t, store.Refresh(context.Background()))

	alerts := store.Alerts(Filter{})
	require.Len(t, alerts, 2)
	assert.Equal(t, "rental:1", alerts[0].ID)
	assert.True(t, store.LastRefresh().Equal(testNow))

	evs := drainEvents(sub)
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeAlertsRefreshed, evs[0].Type)
	assert.Equal(t, 2, evs[0].Payload["count"])
	assert.Equal(t, false, evs[0].Payload["partial"])
}

func TestStoreFilters(t *testing.T) {
	t.Parallel()

	adapter := &staticAdapter{name: "a", alerts: []Alert{
		{ID: "rental:1", Category: CategoryRental, Priority: PriorityHigh, CreatedAt: testNow},
		{ID: "rental:2", Category: CategoryRental, Priority: PriorityMedium, CreatedAt: testNow},
		{ID: "fuel:1", Category: CategoryFuel, Priority: PriorityHigh, CreatedAt: testNow},
	}}
	store := newTestStore(t, adapter)
	require.NoError(t, store.Refresh(context.Background()))

	store.MarkRead("rental:1")
	store.Dismiss("fuel:1")

	assert.Len(t, store.Alerts(Filter{}), 2, "dismissed alerts are hidden by default")
	assert.Len(t, store.Alerts(Filter{IncludeDismissed: true}), 3)
	assert.Len(t, store.Alerts(Filter{Category: CategoryRental}), 2)
	assert.Len(t, store.Alerts(Filter{Priority: PriorityHigh}), 1)

	unread := true
	onlyUnread := store.Alerts(Filter{Unread: &unread})
	require.Len(t, onlyUnread, 1)
	assert.Equal(t, "rental:2", onlyUnread[0].ID)

	read := false
	onlyRead := store.Alerts(Filter{Unread: &read})
	require.Len(t, onlyRead, 1)
	assert.Equal(t, "rental:1", onlyRead[0].ID)
}

func TestStoreMutationsAreIdempotent(t *testing.T) {
	t.Parallel()

	adapter := &staticAdapter{name: "a", alerts: []Alert{
		{ID: "rental:1", Category: CategoryRental, Priority: PriorityHigh, CreatedAt: testNow},
	}}
	store := newTestStore(t, adapter)
	require.NoError(t, store.Refresh(context.Background()))

	sub, unsub := store.Subscribe(8)
	defer unsub()

	store.MarkRead("rental:1")
	store.MarkRead("rental:1")
	store.MarkRead("rental:999")
	store.Dismiss("rental:1")
	store.Dismiss("rental:1")
	store.Dismiss("rental:999")

	evs := drainEvents(sub)
	require.Len(t, evs, 2, "repeat and unknown-id mutations publish nothing")
	assert.Equal(t, events.TypeAlertRead, evs[0].Type)
	assert.Equal(t, events.TypeAlertDismissed, evs[1].Type)
}

func TestStoreFlagsSurviveRefresh(t *testing.T) {
	t.Parallel()

	adapter := &staticAdapter{name: "a", alerts: []Alert{
		{ID: "rental:1", Category: CategoryRental, Priority: PriorityHigh, CreatedAt: testNow},
	}}
	store := newTestStore(t, adapter)
	require.NoError(t, store.Refresh(context.Background()))

	store.MarkRead("rental:1")
	require.NoError(t, store.Refresh(context.Background()))

	alerts := store.Alerts(Filter{})
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Read)
}

func TestStoreRefreshCoalescesConcurrentCalls(t *testing.T) {
	t.Parallel()

	adapter := &staticAdapter{name: "a", delay: 100 * time.Millisecond, alerts: []Alert{
		{ID: "rental:1", Category: CategoryRental, Priority: PriorityHigh, CreatedAt: testNow},
	}}
	store := newTestStore(t, adapter)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, store.Refresh(context.Background()))
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, store.Refresh(context.Background()))
	wg.Wait()

	assert.Equal(t, int32(1), adapter.calls.Load(), "concurrent refreshes join the pass in flight")
	assert.Len(t, store.Alerts(Filter{}), 1)
}

func TestStoreFlagsSetDuringRefreshSurviveInstall(t *testing.T) {
	t.Parallel()

	adapter := &staticAdapter{name: "a", delay: 100 * time.Millisecond, alerts: []Alert{
		{ID: "rental:1", Category: CategoryRental, Priority: PriorityHigh, CreatedAt: testNow},
		{ID: "fuel:v1", Category: CategoryFuel, Priority: PriorityHigh, CreatedAt: testNow},
	}}
	store := newTestStore(t, adapter)
	require.NoError(t, store.Refresh(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, store.Refresh(context.Background()))
	}()

	// Mutate while the pass above is still waiting on the adapter.
	time.Sleep(30 * time.Millisecond)
	assert.True(t, store.MarkRead("rental:1"))
	assert.True(t, store.Dismiss("fuel:v1"))
	wg.Wait()

	alerts := store.Alerts(Filter{IncludeDismissed: true})
	require.Len(t, alerts, 2)
	byID := make(map[string]Alert, len(alerts))
	for _, a := range alerts {
		byID[a.ID] = a
	}
	assert.True(t, byID["rental:1"].Read, "read flag set mid-pass survives the install")
	assert.True(t, byID["fuel:v1"].Dismissed, "dismissal set mid-pass survives the install")
}

func TestStoreReportsPartialRefresh(t *testing.T) {
	t.Parallel()

	healthy := &staticAdapter{name: "healthy", alerts: []Alert{
		{ID: "rental:1", Category: CategoryRental, Priority: PriorityHigh, CreatedAt: testNow},
	}}
	broken := &staticAdapter{name: "broken", err: assert.AnError}
	store := newTestStore(t, healthy, broken)

	require.NoError(t, store.Refresh(context.Background()))

	partial, failures := store.LastRefreshPartial()
	assert.True(t, partial)
	require.Len(t, failures, 1)
	assert.Equal(t, "broken", failures[0].Source)

	assert.Len(t, store.Alerts(Filter{}), 1, "healthy adapters still contribute")

	// A clean pass clears the partial flag.
	broken.err = nil
	require.NoError(t, store.Refresh(context.Background()))
	partial, failures = store.LastRefreshPartial()
	assert.False(t, partial)
	assert.Empty(t, failures)
}
