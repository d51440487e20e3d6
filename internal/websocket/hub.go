package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	CustomerID() int32
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by customer
// It is safe for concurrent use
type Hub struct {
	// customers maps customer ID to a map of client ID to client
	customers map[int32]map[string]ClientInterface
	mu        sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		customers: make(map[int32]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its customer
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	customerID := client.CustomerID()
	clientID := client.ID()

	if h.customers[customerID] == nil {
		h.customers[customerID] = make(map[string]ClientInterface)
	}

	h.customers[customerID][clientID] = client

	log.Debug().
		Int32("customer_id", customerID).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	customerID := client.CustomerID()
	clientID := client.ID()

	if clients, ok := h.customers[customerID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty customer maps
			if len(clients) == 0 {
				delete(h.customers, customerID)
			}

			log.Debug().
				Int32("customer_id", customerID).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients of a specific customer
func (h *Hub) Broadcast(customerID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("customer_id", customerID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.customers[customerID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	// Send to each client asynchronously
	for _, client := range clientsCopy {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("customer_id", customerID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int32("customer_id", customerID).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients connected for a customer
func (h *Hub) ClientCount(customerID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.customers[customerID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all customers
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.customers {
		total += len(clients)
	}
	return total
}
