package mock

import (
	"encoding/json"
	"sync"
)

// Published is one recorded event.
type Published struct {
	Type    string
	Payload json.RawMessage
}

// MockPublisher records published events for testing.
type MockPublisher struct {
	mu        sync.Mutex
	Events    []Published
	PublishFn func(eventType string, payload any)
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish snapshots payload as JSON so later mutations of the record do not leak into assertions.
func (m *MockPublisher) Publish(eventType string, payload any) {
	if m.PublishFn != nil {
		m.PublishFn(eventType, payload)
		return
	}
	data, _ := json.Marshal(payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, Published{Type: eventType, Payload: data})
}

// OfType returns the recorded events of the given type, oldest first.
func (m *MockPublisher) OfType(eventType string) []Published {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Published
	for _, e := range m.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of recorded events.
func (m *MockPublisher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}
