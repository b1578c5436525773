// Package relay mirrors hub events across service instances through a
// RabbitMQ fanout exchange. The Publisher is a hub.Sink; the Consumer feeds
// events published by other instances back into the local hub.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/hub"
	"github.com/Harsh-BH/dispatch/internal/metrics"
)

const (
	exchangeType = "fanout"

	// Reconnection settings
	reconnectDelay    = 2 * time.Second
	maxReconnectDelay = 30 * time.Second

	// Publish timeout
	publishTimeout = 5 * time.Second

	outboxSize = 256
)

// Publisher forwards locally published events to the exchange. Forward only
// enqueues; a single goroutine publishes with broker confirms.
type Publisher struct {
	url      string
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
	confirms chan amqp.Confirmation
	logger   *zap.Logger
	outbox   chan hub.Event
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
	wg       sync.WaitGroup
}

var _ hub.Sink = (*Publisher)(nil)

// NewPublisher connects, declares the exchange and starts the publish loop.
func NewPublisher(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	p := &Publisher{
		url:      url,
		exchange: exchange,
		logger:   logger,
		outbox:   make(chan hub.Event, outboxSize),
		done:     make(chan struct{}),
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	// Watch for connection closures and reconnect
	p.wg.Add(2)
	go p.watchConnection()
	go p.run()

	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq: channel: %w", err)
	}

	// Enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, exchangeType, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.mu.Unlock()

	p.logger.Info("Relay publisher initialized", zap.String("exchange", p.exchange))
	return nil
}

// watchConnection monitors the connection and reconnects on failure.
func (p *Publisher) watchConnection() {
	defer p.wg.Done()
	for {
		p.mu.RLock()
		if p.closed {
			p.mu.RUnlock()
			return
		}
		conn := p.conn
		p.mu.RUnlock()

		if conn == nil {
			time.Sleep(reconnectDelay)
			continue
		}

		// Block until the connection closes
		reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok {
			// Channel closed normally
			return
		}

		p.logger.Warn("RabbitMQ connection lost, reconnecting...",
			zap.String("reason", reason.Error()),
		)

		delay := reconnectDelay
		for {
			select {
			case <-p.done:
				return
			case <-time.After(delay):
			}

			if err := p.connect(); err != nil {
				p.logger.Warn("RabbitMQ reconnect failed", zap.Error(err), zap.Duration("retry_in", delay))
				delay = delay * 2
				if delay > maxReconnectDelay {
					delay = maxReconnectDelay
				}
				continue
			}

			p.logger.Info("RabbitMQ reconnected successfully")
			break
		}
	}
}

// Forward enqueues evt for publishing; when the outbox is full the event is dropped.
func (p *Publisher) Forward(evt hub.Event) {
	select {
	case p.outbox <- evt:
	default:
		metrics.RelayMessages.WithLabelValues("out", "dropped").Inc()
		p.logger.Warn("Relay outbox full, dropping event", zap.String("type", evt.Type))
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case evt := <-p.outbox:
			if err := p.publish(evt); err != nil {
				metrics.RelayMessages.WithLabelValues("out", "error").Inc()
				p.logger.Warn("Relay publish failed", zap.String("type", evt.Type), zap.Error(err))
				continue
			}
			metrics.RelayMessages.WithLabelValues("out", "ok").Inc()
		}
	}
}

func (p *Publisher) publish(evt hub.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	p.mu.RLock()
	ch := p.channel
	confirm := p.confirms
	p.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("rabbitmq: channel not available (reconnecting)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		p.exchange,
		"",    // fanout ignores the routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			AppId:       evt.Origin,
			Type:        evt.Type,
			Timestamp:   evt.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}

	// Wait for broker confirmation
	select {
	case ack, ok := <-confirm:
		if !ok {
			return fmt.Errorf("rabbitmq: confirm channel closed (type=%s)", evt.Type)
		}
		if !ack.Ack {
			return fmt.Errorf("rabbitmq: broker nacked event (type=%s)", evt.Type)
		}
	case <-ctx.Done():
		return fmt.Errorf("rabbitmq: publish confirmation timeout (type=%s)", evt.Type)
	}

	p.logger.Debug("Relayed event", zap.String("type", evt.Type), zap.Int("body_size", len(body)))
	return nil
}

// Close stops the publish loop and closes the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)

	var err error
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		err = p.conn.Close()
	}
	p.mu.Unlock()

	p.wg.Wait()
	return err
}
