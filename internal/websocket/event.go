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
	EventTypeRolled  EventType = "rolled"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypePointTransaction EntityType = "point_transaction"
	EntityTypeMembership       EntityType = "membership"
	EntityTypeBalance          EntityType = "balance"
	EntityTypePeriod           EntityType = "period"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "point_transaction.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "point_transaction"
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

// PointTransactionCreated creates a point_transaction.created event
func PointTransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePointTransaction, payload)
}

// PointTransactionUpdated creates a point_transaction.updated event
func PointTransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePointTransaction, payload)
}

// PointTransactionDeleted creates a point_transaction.deleted event
func PointTransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypePointTransaction, payload)
}

// MembershipUpdated creates a membership.updated event
func MembershipUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeMembership, payload)
}

// BalanceUpdated creates a balance.updated event carrying a fresh snapshot
func BalanceUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBalance, payload)
}

// PeriodRolled creates a period.rolled event
func PeriodRolled(payload interface{}) Event {
	return NewEvent(EventTypeRolled, EntityTypePeriod, payload)
}
