// Package events fans state-change notifications out to in-process observers.
package events

import (
	"sync"
	"time"
)

type Type string

const (
	// Loaded fires once, after the initial load attempted every slice.
	Loaded Type = "loaded"
	// Changed fires after a mutation replaced a slice.
	Changed Type = "changed"
	// Reset fires after sign-out restored every slice to its default.
	Reset Type = "reset"
)

type Event struct {
	Type  Type      `json:"type"`
	Slice string    `json:"slice,omitempty"`
	At    time.Time `json:"at"`
}

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 64

type Subscription struct {
	C <-chan Event

	send chan Event
	hub  *Hub
	once sync.Once
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

type Hub struct {
	clients map[*Subscription]bool
	buffer  int
	closed  bool
	mu      sync.RWMutex
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		clients: make(map[*Subscription]bool),
		buffer:  buffer,
	}
}

// Subscribe after Close returns a subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, send: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		h.drop(sub)
		return sub
	}
	h.clients[sub] = true
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(sub)
}

// drop must be called with mu held for writing.
func (h *Hub) drop(sub *Subscription) {
	if _, ok := h.clients[sub]; ok {
		delete(h.clients, sub)
	}
	sub.once.Do(func() { close(sub.send) })
}

// Publish never blocks. A subscriber whose buffer is full is dropped and
// its channel closed, so it can tell it missed events.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.clients {
		select {
		case sub.send <- ev:
		default:
			h.drop(sub)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for sub := range h.clients {
		h.drop(sub)
	}
}
