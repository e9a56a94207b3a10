package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()

	ch1, unsub1 := h.Subscribe(4)
	ch2, unsub2 := h.Subscribe(4)
	defer unsub1()
	defer unsub2()

	h.Publish(NewEvent(TypeAlertsRefreshed, map[string]any{"count": 3}))

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, TypeAlertsRefreshed, ev.Type)
			assert.Equal(t, 3, ev.Payload["count"])
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestHub_UnsubscribeStopsDeliveryAndClosesChannel(t *testing.T) {
	h := NewHub()

	ch, unsub := h.Subscribe(1)
	unsub()

	h.Publish(NewEvent(TypeAlertRead, nil))

	_, open := <-ch
	assert.False(t, open, "unsubscribed channel must be closed")
	assert.Equal(t, 0, h.SubscriberCount())

	// Double unsubscribe is a no-op.
	unsub()
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()

	ch, unsub := h.Subscribe(1)
	defer unsub()

	// Fill the buffer, then publish more; Publish must not block.
	h.Publish(NewEvent(TypeAlertsRefreshed, nil))
	h.Publish(NewEvent(TypeAlertRead, nil))
	h.Publish(NewEvent(TypeAlertDismissed, nil))

	ev := <-ch
	require.Equal(t, TypeAlertsRefreshed, ev.Type, "only the buffered event is delivered")
	select {
	case <-ch:
		t.Fatal("overflow events should have been dropped")
	default:
	}
}

func TestHub_NilHubIsSafe(t *testing.T) {
	var h *Hub

	ch, unsub := h.Subscribe(1)
	unsub()
	h.Publish(NewEvent(TypeAlertsRefreshed, nil))

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.SubscriberCount())
}
