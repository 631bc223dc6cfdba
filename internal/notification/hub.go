package notification

import (
	"sync"
)

// Event is a single user-facing notification message.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

const subscriberBuffer = 16

// Hub owns the registry of connected users on this instance. Delivery is
// best-effort and non-blocking: a subscriber whose buffer is full simply
// misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string][]chan Event)}
}

// Subscribe registers the user and returns their event channel plus an
// unsubscribe function. A user may hold several concurrent subscriptions
// (multiple tabs/devices).
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[userID] = append(h.subs[userID], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		chans := h.subs[userID]
		for i, c := range chans {
			if c == ch {
				h.subs[userID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
		close(ch)
	}
	return ch, cancel
}

// Send delivers the event to every subscription of the user. Reports whether
// at least one subscriber received it.
func (h *Hub) Send(userID string, ev Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := false
	for _, ch := range h.subs[userID] {
		select {
		case ch <- ev:
			delivered = true
		default:
			// slow consumer, drop
		}
	}
	return delivered
}

// Broadcast sends the event to every connected user.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, chans := range h.subs {
		for _, ch := range chans {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Connected reports whether the user has at least one live subscription.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID]) > 0
}
