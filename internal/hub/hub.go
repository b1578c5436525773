// Package hub fans events out to every connected subscriber.
//
// Each subscriber owns a bounded queue drained by its transport goroutine.
// Publish never blocks: a subscriber whose queue is full is treated as a
// failed write and evicted, which closes its queue so the transport can
// drop the connection. The hub knows nothing about the payloads it carries.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/metrics"
)

// PingEvent is the liveness probe queued for every new subscriber.
const PingEvent = "ping"

// Event is a typed, already-encoded payload.
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Origin    string          `json:"origin,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Sink receives a copy of every locally published event.
// Forward must not block.
type Sink interface {
	Forward(evt Event)
}

// Subscriber is one live output channel.
type Subscriber struct {
	id     uint64
	events chan Event

	mu     sync.Mutex
	closed bool
}

// ID returns the hub-assigned subscriber id.
func (s *Subscriber) ID() uint64 {
	return s.id
}

// Events returns the subscriber's queue. It is closed on eviction or Unsubscribe.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// offer enqueues without blocking and reports whether the event was accepted.
func (s *Subscriber) offer(evt Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- evt:
		return true
	default:
		return false
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Hub maintains the active subscriber set.
type Hub struct {
	origin string
	buffer int
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers map[uint64]*Subscriber
	nextID      uint64
	sinks       []Sink
	closed      bool
}

// New creates a hub. origin tags events published here so relays can skip
// their own echoes; buffer is the per-subscriber queue length.
func New(origin string, buffer int, logger *zap.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		origin:      origin,
		buffer:      buffer,
		logger:      logger,
		subscribers: make(map[uint64]*Subscriber),
	}
}

// Origin returns the instance tag stamped on locally published events.
func (h *Hub) Origin() string {
	return h.origin
}

// AddSink registers a sink. Sinks are expected to be added during startup.
func (h *Hub) AddSink(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, s)
}

// Subscribe registers a new subscriber with the ping event already queued.
// Subscribing to a closed hub returns a subscriber whose queue is closed.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscriber{
		id:     h.nextID,
		events: make(chan Event, h.buffer+1),
	}
	if h.closed {
		sub.close()
		return sub
	}

	sub.offer(Event{Type: PingEvent, Data: json.RawMessage(`"ok"`), Origin: h.origin, Timestamp: time.Now().UTC()})
	h.subscribers[sub.id] = sub
	metrics.HubSubscribers.Set(float64(len(h.subscribers)))

	h.logger.Debug("Subscriber added", zap.Uint64("subscriber_id", sub.id))
	return sub
}

// Unsubscribe removes sub. Safe to call repeatedly or after eviction.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	if _, ok := h.subscribers[sub.id]; ok {
		delete(h.subscribers, sub.id)
		metrics.HubSubscribers.Set(float64(len(h.subscribers)))
		h.logger.Debug("Subscriber removed", zap.Uint64("subscriber_id", sub.id))
	}
	h.mu.Unlock()
	sub.close()
}

// Publish encodes payload and delivers it to every current subscriber and sink.
// Failures are absorbed here and never reach the caller.
func (h *Hub) Publish(eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to encode event payload", zap.String("type", eventType), zap.Error(err))
		return
	}

	evt := Event{Type: eventType, Data: data, Origin: h.origin, Timestamp: time.Now().UTC()}
	h.Deliver(evt)

	h.mu.RLock()
	sinks := h.sinks
	h.mu.RUnlock()
	for _, s := range sinks {
		s.Forward(evt)
	}
}

// Deliver fans an encoded event out to local subscribers only.
func (h *Hub) Deliver(evt Event) {
	metrics.HubEventsTotal.WithLabelValues(evt.Type).Inc()

	var failed []*Subscriber

	h.mu.RLock()
	for _, sub := range h.subscribers {
		if !sub.offer(evt) {
			failed = append(failed, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range failed {
		h.logger.Warn("Evicting slow subscriber",
			zap.Uint64("subscriber_id", sub.id),
			zap.String("type", evt.Type),
		)
		metrics.HubEvictions.Inc()
		h.Unsubscribe(sub)
	}
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close evicts every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[uint64]*Subscriber)
	h.closed = true
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	metrics.HubSubscribers.Set(0)
}
