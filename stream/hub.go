// Package stream fans application events out to connected sessions.
package stream

import (
	"sync"
	"time"

	"homehub/models"
)

// Hub is an in-process publish/subscribe fan-out. Subscribers receive
// events on buffered channels; a subscriber that cannot keep up has
// events dropped rather than blocking the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan models.Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan models.Event]struct{})}
}

// Subscribe registers a new subscriber with the given buffer size.
func (h *Hub) Subscribe(buffer int) chan models.Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan models.Event, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan models.Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish delivers the event to every subscriber. Full subscriber
// buffers are skipped.
func (h *Hub) Publish(ev models.Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
