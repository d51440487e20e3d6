package events

import (
	"encoding/json"
	"time"
)

// Kind identifies what happened to a customer's ledger.
type Kind string

const (
	KindPointsBooked      Kind = "points.booked"
	KindPointsUpdated     Kind = "points.updated"
	KindPointsDeleted     Kind = "points.deleted"
	KindMembershipUpdated Kind = "membership.updated"
	KindPeriodRolled      Kind = "period.rolled"
)

// LedgerEvent is published to the message broker after every successful
// ledger mutation. The messaging/notification system consumes these; this
// service only publishes.
type LedgerEvent struct {
	CustomerID    int32     `json:"customerId"`
	Kind          Kind      `json:"kind"`
	TransactionID *int32    `json:"transactionId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewLedgerEvent creates a LedgerEvent stamped with the current time.
func NewLedgerEvent(customerID int32, kind Kind, transactionID *int32) *LedgerEvent {
	return &LedgerEvent{
		CustomerID:    customerID,
		Kind:          kind,
		TransactionID: transactionID,
		OccurredAt:    time.Now().UTC(),
	}
}

// ToJSON serializes the event
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON deserializes an event
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
