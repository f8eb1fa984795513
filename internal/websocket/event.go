package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypeError   EventType = "error"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransaction   EntityType = "transaction"
	EntityTypeCategory      EntityType = "category"
	EntityTypeBudget        EntityType = "budget"
	EntityTypeMonthlyReport EntityType = "monthly_report"
	EntityTypeView          EntityType = "view"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "transaction"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// InvalidatesViews reports whether the event changes data a monthly view is built from.
func (e Event) InvalidatesViews() bool {
	return e.Entity == EntityTypeTransaction || e.Entity == EntityTypeCategory
}

func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

func CategoryUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCategory, payload)
}

func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}

func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

func MonthlyReportUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeMonthlyReport, payload)
}

// ViewUpdated carries a freshly computed monthly view to its session's client
func ViewUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeView, payload)
}

// ViewError reports a failed view action back to the client that sent it
func ViewError(payload interface{}) Event {
	return NewEvent(EventTypeError, EntityTypeView, payload)
}
