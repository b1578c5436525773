package usecase

import (
	"strings"

	"github.com/google/uuid"
)

// EventPublisher is the broadcast side effect of state changes.
type EventPublisher interface {
	Publish(eventType string, payload any)
}

// newID returns prefix followed by ten random upper-case hex digits, e.g. J-3F9A0C12B4.
func newID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:10])
}
