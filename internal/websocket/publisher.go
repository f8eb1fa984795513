package websocket

import "github.com/google/uuid"

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to all clients connected for the specified user
	Publish(userID uuid.UUID, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish broadcasts the event to the user's clients and, when the event
// touches view inputs, asks their open views to reload.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	h.Broadcast(userID, event)
	if event.InvalidatesViews() {
		h.InvalidateViews(userID)
	}
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(userID uuid.UUID, event Event) {}
