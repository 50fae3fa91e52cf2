package server

import (
	"log/slog"
	"sync"
	"time"
)

// EventType is the closed set of internal events the broker carries.
type EventType string

const (
	EventConfigReloaded EventType = "config-reloaded"
	EventServerError    EventType = "server-error"
)

// Event is one broadcastable internal event.
type Event struct {
	Type EventType              `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventBroker fans out internal events to in-process subscribers — the
// same broadcast primitive the teacher's SSE /events endpoint used. The
// server broadcasts EventConfigReloaded after a config reload; no HTTP or
// MCP route subscribes to it (spec.md §6.3 does not name a bare /events
// route).
type EventBroker struct {
	clients      map[chan Event]struct{}
	clientsMutex sync.RWMutex
	logger       *slog.Logger
}

// NewEventBroker creates a new event broker.
func NewEventBroker(logger *slog.Logger) *EventBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBroker{
		clients: make(map[chan Event]struct{}),
		logger:  logger,
	}
}

// Subscribe adds a new client to receive events.
func (b *EventBroker) Subscribe() chan Event {
	b.clientsMutex.Lock()
	defer b.clientsMutex.Unlock()

	client := make(chan Event, 10)
	b.clients[client] = struct{}{}
	b.logger.Debug("events.subscribed", "total_clients", len(b.clients))
	return client
}

// Unsubscribe removes a client from receiving events.
func (b *EventBroker) Unsubscribe(client chan Event) {
	b.clientsMutex.Lock()
	defer b.clientsMutex.Unlock()

	delete(b.clients, client)
	close(client)
	b.logger.Debug("events.unsubscribed", "total_clients", len(b.clients))
}

// Broadcast sends an event to all subscribed clients, skipping any that
// aren't reading within a short grace period rather than blocking.
func (b *EventBroker) Broadcast(event Event) {
	b.clientsMutex.RLock()
	defer b.clientsMutex.RUnlock()

	b.logger.Debug("events.broadcast", "type", event.Type, "clients", len(b.clients))

	for client := range b.clients {
		select {
		case client <- event:
		case <-time.After(100 * time.Millisecond):
			b.logger.Warn("events.client_not_reading, skipping")
		}
	}
}

// ClientCount returns the number of active subscribers.
func (b *EventBroker) ClientCount() int {
	b.clientsMutex.RLock()
	defer b.clientsMutex.RUnlock()
	return len(b.clients)
}
