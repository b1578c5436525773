package relay

import (
	"encoding/json"
	"testing"
	"time"

	amqplib "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/hub"
)

type fakeAcker struct {
	acked  int
	nacked int
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	f.nacked++
	return nil
}

func newDelivery(t *testing.T, acker *fakeAcker, evt hub.Event) amqplib.Delivery {
	t.Helper()
	body, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return amqplib.Delivery{Acknowledger: acker, AppId: evt.Origin, Body: body}
}

func TestConsumer_DispatchForeignEvent(t *testing.T) {
	var got []hub.Event
	c := &Consumer{origin: "node-a", logger: zap.NewNop(), handle: func(evt hub.Event) { got = append(got, evt) }}
	acker := &fakeAcker{}

	c.dispatch(newDelivery(t, acker, hub.Event{
		Type:      "job:update",
		Data:      json.RawMessage(`{"id":"J-1"}`),
		Origin:    "node-b",
		Timestamp: time.Now(),
	}))

	if len(got) != 1 || got[0].Type != "job:update" {
		t.Fatalf("expected the foreign event to be handled, got %+v", got)
	}
	if string(got[0].Data) != `{"id":"J-1"}` {
		t.Errorf("payload altered in transit: %s", got[0].Data)
	}
	if acker.acked != 1 {
		t.Errorf("expected 1 ACK, got %d", acker.acked)
	}
}

func TestConsumer_SkipsOwnEcho(t *testing.T) {
	handled := 0
	c := &Consumer{origin: "node-a", logger: zap.NewNop(), handle: func(hub.Event) { handled++ }}
	acker := &fakeAcker{}

	c.dispatch(newDelivery(t, acker, hub.Event{Type: "job:update", Data: json.RawMessage(`{}`), Origin: "node-a"}))

	if handled != 0 {
		t.Errorf("own event must not be re-delivered, handled %d", handled)
	}
	if acker.acked != 1 {
		t.Errorf("own event should still be ACKed, got %d", acker.acked)
	}
}

func TestConsumer_RejectsGarbage(t *testing.T) {
	handled := 0
	c := &Consumer{logger: zap.NewNop(), handle: func(hub.Event) { handled++ }}
	acker := &fakeAcker{}

	c.dispatch(amqplib.Delivery{Acknowledger: acker, Body: []byte("not json")})

	if handled != 0 {
		t.Error("garbage must not reach the handler")
	}
	if acker.nacked != 1 {
		t.Errorf("expected 1 NACK, got %d", acker.nacked)
	}
}

func TestPublisher_ForwardDropsWhenFull(t *testing.T) {
	p := &Publisher{logger: zap.NewNop(), outbox: make(chan hub.Event, 1)}

	p.Forward(hub.Event{Type: "job:update"})
	p.Forward(hub.Event{Type: "job:update"})

	if len(p.outbox) != 1 {
		t.Errorf("expected outbox to hold 1 event, got %d", len(p.outbox))
	}
}
