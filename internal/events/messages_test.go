package events

import (
	"testing"
	"time"
)

func TestLedgerEventRoundTrip(t *testing.T) {
	txID := int32(42)
	event := &LedgerEvent{
		CustomerID:    7,
		Kind:          KindPointsBooked,
		TransactionID: &txID,
		OccurredAt:    time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC),
	}

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	parsed, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if parsed.CustomerID != 7 || parsed.Kind != KindPointsBooked {
		t.Errorf("Unexpected event: %+v", parsed)
	}
	if parsed.TransactionID == nil || *parsed.TransactionID != 42 {
		t.Error("Expected transaction ID 42")
	}
	if !parsed.OccurredAt.Equal(event.OccurredAt) {
		t.Errorf("Expected %v, got %v", event.OccurredAt, parsed.OccurredAt)
	}
}

func TestNewLedgerEvent_OmitsTransactionID(t *testing.T) {
	event := NewLedgerEvent(3, KindPeriodRolled, nil)
	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) == "" || event.TransactionID != nil {
		t.Error("Expected nil transaction ID")
	}
	if event.OccurredAt.IsZero() {
		t.Error("Expected occurredAt to be stamped")
	}
}
