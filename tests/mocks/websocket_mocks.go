package mocks

import (
	"sync"

	"github.com/welldanyogia/webrana-contact-relay/internal/websocket"
)

// DeliveryEvent records a delivery published through the mock hub
type DeliveryEvent struct {
	Status  string
	Payload *websocket.DeliveryPayload
}

// MockDeliveryPublisher records BroadcastDelivery calls
type MockDeliveryPublisher struct {
	mu     sync.Mutex
	events []DeliveryEvent
}

// NewMockDeliveryPublisher creates a new MockDeliveryPublisher instance
func NewMockDeliveryPublisher() *MockDeliveryPublisher {
	return &MockDeliveryPublisher{}
}

// BroadcastDelivery records the event
func (m *MockDeliveryPublisher) BroadcastDelivery(status string, payload *websocket.DeliveryPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, DeliveryEvent{Status: status, Payload: payload})
}

// Events returns all recorded events
func (m *MockDeliveryPublisher) Events() []DeliveryEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeliveryEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Clear drops all recorded events
func (m *MockDeliveryPublisher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
