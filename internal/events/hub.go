// Package events fans out state-change notifications to subscribers.
package events

import (
	"sync"
	"time"
)

// Event types published by the alert store.
const (
	TypeAlertsRefreshed = "alerts.refreshed"
	TypeAlertRead       = "alerts.read"
	TypeAlertDismissed  = "alerts.dismissed"
)

// Event is a notification delivered to subscribers.
type Event struct {
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewEvent creates an Event stamped with the current UTC time.
func NewEvent(eventType string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
}

// Hub is a fan-out pub/sub with an explicit unsubscribe lifecycle.
// Publish never blocks: slow subscribers miss events rather than stalling
// the publisher.
type Hub struct {
	mu          sync.RWMutex
	nextID      int64
	subscribers map[int64]chan Event
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]chan Event),
	}
}

// Subscribe registers a listener and returns its channel plus an
// unsubscribe function. Calling unsubscribe twice is safe. A nil Hub
// yields a closed channel so optional wiring needs no nil checks.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if h == nil {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subscribers[id] = ch
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		current, ok := h.subscribers[id]
		if ok {
			delete(h.subscribers, id)
		}
		h.mu.Unlock()
		if ok {
			close(current)
		}
	}
	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish delivers event to every subscriber with room in its buffer.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber is not keeping up; the next event will carry
			// the fresher state anyway.
		}
	}
}
