package hub

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Forward(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func recv(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case evt, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscriber queue closed unexpectedly")
		}
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestSubscribe_ReceivesPingFirst(t *testing.T) {
	h := New("node-a", 4, zap.NewNop())
	sub := h.Subscribe()

	evt := recv(t, sub)
	if evt.Type != PingEvent {
		t.Fatalf("expected ping, got %s", evt.Type)
	}
	if string(evt.Data) != `"ok"` {
		t.Errorf("expected \"ok\" payload, got %s", evt.Data)
	}
	if h.Len() != 1 {
		t.Errorf("expected 1 subscriber, got %d", h.Len())
	}
}

func TestPublish_ReachesAllSubscribers(t *testing.T) {
	h := New("node-a", 4, zap.NewNop())
	subs := []*Subscriber{h.Subscribe(), h.Subscribe(), h.Subscribe()}
	for _, s := range subs {
		recv(t, s)
	}

	h.Publish("job:update", map[string]string{"id": "J-1"})

	for i, s := range subs {
		evt := recv(t, s)
		if evt.Type != "job:update" {
			t.Errorf("subscriber %d: expected job:update, got %s", i, evt.Type)
		}
		var body map[string]string
		if err := json.Unmarshal(evt.Data, &body); err != nil || body["id"] != "J-1" {
			t.Errorf("subscriber %d: unexpected payload %s", i, evt.Data)
		}
		if evt.Origin != "node-a" {
			t.Errorf("subscriber %d: expected origin node-a, got %s", i, evt.Origin)
		}
	}
}

func TestPublish_FIFOPerSubscriber(t *testing.T) {
	h := New("node-a", 16, zap.NewNop())
	sub := h.Subscribe()
	recv(t, sub)

	for i := 0; i < 10; i++ {
		h.Publish("job:update", i)
	}
	for i := 0; i < 10; i++ {
		evt := recv(t, sub)
		var n int
		_ = json.Unmarshal(evt.Data, &n)
		if n != i {
			t.Fatalf("expected event %d, got %d", i, n)
		}
	}
}

func TestPublish_SlowSubscriberEvictedOthersServed(t *testing.T) {
	h := New("node-a", 2, zap.NewNop())
	slow := h.Subscribe()
	fast := h.Subscribe()

	for i := 0; i < 5; i++ {
		h.Publish("job:update", i)
		// Drain the fast subscriber as a live transport would.
		for len(fast.Events()) > 0 {
			<-fast.Events()
		}
	}

	if h.Len() != 1 {
		t.Fatalf("expected only the fast subscriber to remain, got %d", h.Len())
	}

	// The slow queue is closed after whatever it had buffered.
	drained := 0
	for range slow.Events() {
		drained++
	}
	if drained == 0 {
		t.Error("expected buffered events before eviction")
	}

	h.Publish("job:update", "after")
	if evt := recv(t, fast); evt.Type != "job:update" {
		t.Errorf("fast subscriber missed event after eviction, got %s", evt.Type)
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	h := New("node-a", 4, zap.NewNop())
	sub := h.Subscribe()

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	h.Unsubscribe(nil)

	if h.Len() != 0 {
		t.Errorf("expected no subscribers, got %d", h.Len())
	}

	// Publishing after removal must not panic on the closed queue.
	h.Publish("job:update", "x")
}

func TestPublish_ConcurrentWithSubscribeChurn(t *testing.T) {
	h := New("node-a", 8, zap.NewNop())

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				sub := h.Subscribe()
				h.Unsubscribe(sub)
			}
		}()
	}

	for i := 0; i < 500; i++ {
		h.Publish("job:update", i)
	}
	close(stop)
	wg.Wait()

	if h.Len() != 0 {
		t.Errorf("expected all churned subscribers removed, got %d", h.Len())
	}
}

func TestPublish_ForwardsToSinksButDeliverDoesNot(t *testing.T) {
	h := New("node-a", 4, zap.NewNop())
	sink := &recordingSink{}
	h.AddSink(sink)

	h.Publish("order:update", map[string]string{"id": "OS-1"})
	h.Deliver(Event{Type: "order:update", Data: json.RawMessage(`{}`), Origin: "node-b"})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", len(sink.events))
	}
	if sink.events[0].Origin != "node-a" {
		t.Errorf("expected local origin, got %s", sink.events[0].Origin)
	}
}

func TestClose_EndsSubscribers(t *testing.T) {
	h := New("node-a", 4, zap.NewNop())
	sub := h.Subscribe()
	recv(t, sub)

	h.Close()

	if _, ok := <-sub.Events(); ok {
		t.Error("expected closed queue after hub Close")
	}

	late := h.Subscribe()
	if _, ok := <-late.Events(); ok {
		t.Error("expected closed queue for subscriber added after Close")
	}
}
