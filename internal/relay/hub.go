// Package relay fans live order-location events out to per-order subscribers.
package relay

import (
	"sync"

	"rebook/internal/domain"
)

const (
	EventUpdate = "update"
	EventDelete = "delete"
)

type Event struct {
	Type     string               `json:"type"`
	Location domain.OrderLocation `json:"location"`
}

// Hub is an in-process publish/subscribe channel keyed by order id. A slow
// subscriber never blocks a publisher: events beyond the channel buffer are
// dropped, and the next report fully replaces the stale position anyway.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

const subBuffer = 16

// Subscribe registers a listener for one order's events. The returned cancel
// func must be called on teardown; it closes the channel.
func (h *Hub) Subscribe(orderID string) (<-chan Event, func()) {
	ch := make(chan Event, subBuffer)

	h.mu.Lock()
	set, ok := h.subs[orderID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[orderID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[orderID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, orderID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to the order's current subscribers. Events never
// leak across orders.
func (h *Hub) Publish(orderID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[orderID] {
		select {
		case ch <- ev:
		default: // subscriber is saturated; drop rather than block
		}
	}
}

// Subscribers reports the current listener count for an order.
func (h *Hub) Subscribers(orderID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[orderID])
}
