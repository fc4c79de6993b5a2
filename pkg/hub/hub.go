// Package hub implements a websocket broadcast hub for telemetry streams.
// One hub fans a stream of JSON frames out to every connected subscriber,
// evicting subscribers that cannot keep up.
package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/openfleet/go-fleetapi/internal/log"
)

// Hub maintains the set of active subscribers and broadcasts frames to them.
type Hub struct {
	// Name for logging
	name string

	// Registered subscribers
	subscribers map[*Subscriber]bool

	// Inbound frames to broadcast
	broadcast chan []byte

	// Register requests from subscribers
	register chan *Subscriber

	// Unregister requests from subscribers
	unregister chan *Subscriber

	// Closed when the hub loop exits, so subscriber pumps never block on
	// register/unregister after shutdown
	done chan struct{}

	// Mutex for subscriber count (read-only access from outside)
	mu sync.RWMutex
}

// New creates a new Hub.
func New(name string) *Hub {
	return &Hub{
		name:        name,
		subscribers: make(map[*Subscriber]bool),
		broadcast:   make(chan []byte, 64),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		done:        make(chan struct{}),
	}
}

// Run starts the hub's main loop and blocks until ctx is canceled.
// This should be called in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for sub := range h.subscribers {
				close(sub.send)
				delete(h.subscribers, sub)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			count := len(h.subscribers)
			h.mu.Unlock()
			log.Debug("telemetry subscriber connected", "hub", h.name, "total", count)

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
			}
			count := len(h.subscribers)
			h.mu.Unlock()
			log.Debug("telemetry subscriber disconnected", "hub", h.name, "remaining", count)

		case frame := <-h.broadcast:
			h.mu.Lock()
			for sub := range h.subscribers {
				select {
				case sub.send <- frame:
				default:
					// Subscriber's buffer is full - they're too slow
					close(sub.send)
					delete(h.subscribers, sub)
					log.Warn("dropped slow telemetry subscriber", "hub", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a raw frame for all connected subscribers. Frames are
// dropped, not queued indefinitely, when the hub is saturated.
func (h *Hub) Broadcast(frame []byte) {
	select {
	case h.broadcast <- frame:
	default:
		log.Warn("broadcast channel full, dropping frame", "hub", h.name)
	}
}

// BroadcastJSON encodes v and broadcasts it as one frame.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
