package domain

// EventType is the vocabulary of events pushed through the broadcast hub.
type EventType = string

const (
	EventPing           EventType = "ping"
	EventJobUpdate      EventType = "job:update"
	EventProviderUpdate EventType = "provider:update"
	EventOrderUpdate    EventType = "order:update"
)
