package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	amqplib "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/hub"
	"github.com/Harsh-BH/dispatch/internal/metrics"
)

const (
	// Reconnection parameters
	baseReconnectDelay = 1 * time.Second
)

// Handler receives events published by other instances.
type Handler func(evt hub.Event)

// Consumer binds a private, auto-deleted queue to the fanout exchange and
// hands every foreign event to its handler.
type Consumer struct {
	url      string
	exchange string
	origin   string
	handle   Handler
	conn     *amqplib.Connection
	channel  *amqplib.Channel
	queue    string
	logger   *zap.Logger

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
}

// NewConsumer creates a new relay consumer. Events whose origin equals origin
// are skipped; pass an empty origin to receive everything.
func NewConsumer(url, exchange, origin string, handle Handler, logger *zap.Logger) (*Consumer, error) {
	c := &Consumer{
		url:      url,
		exchange: exchange,
		origin:   origin,
		handle:   handle,
		logger:   logger,
		closeCh:  make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Consumer) connect() error {
	conn, err := amqplib.Dial(c.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(c.exchange, exchangeType, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("amqp exchange declare: %w", err)
	}

	// Server-named, exclusive, auto-delete: each instance gets its own copy
	// of the stream and nothing accumulates while it is down.
	q, err := ch.QueueDeclare(
		"",
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", c.exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("amqp queue bind: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.queue = q.Name
	c.mu.Unlock()

	return nil
}

// Start begins consuming messages. It blocks until the context is cancelled.
// On connection loss it automatically reconnects with exponential backoff.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if err == nil {
			// Context cancelled: clean shutdown.
			return nil
		}

		// Check if we were explicitly closed.
		select {
		case <-c.closeCh:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		c.logger.Warn("Relay consumer lost connection, reconnecting...", zap.Error(err))

		// Exponential backoff reconnection loop.
		for attempt := 0; ; attempt++ {
			delay := time.Duration(math.Min(
				float64(baseReconnectDelay)*math.Pow(2, float64(attempt)),
				float64(maxReconnectDelay),
			))
			c.logger.Info("Reconnect attempt",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)

			select {
			case <-c.closeCh:
				return nil
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}

			if err := c.connect(); err != nil {
				c.logger.Error("Reconnect failed", zap.Error(err))
				continue
			}

			c.logger.Info("Reconnected to RabbitMQ")
			break
		}
	}
}

// consume runs one consume session until the delivery channel closes or ctx is cancelled.
func (c *Consumer) consume(ctx context.Context) error {
	c.mu.Lock()
	ch := c.channel
	queue := c.queue
	c.mu.Unlock()

	if ch == nil {
		return fmt.Errorf("channel is nil")
	}

	deliveries, err := ch.Consume(
		queue,
		"",    // auto-generated consumer tag
		false, // auto-ack disabled (manual ack)
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	c.logger.Info("Relay consumer started", zap.String("exchange", c.exchange), zap.String("queue", queue))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Relay consumer stopping (context cancelled)")
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.dispatch(delivery)
		}
	}
}

func (c *Consumer) dispatch(delivery amqplib.Delivery) {
	if c.origin != "" && delivery.AppId == c.origin {
		_ = delivery.Ack(false)
		return
	}

	var evt hub.Event
	if err := json.Unmarshal(delivery.Body, &evt); err != nil {
		c.logger.Error("Failed to unmarshal relayed event",
			zap.Error(err),
			zap.String("body", string(delivery.Body)),
		)
		metrics.RelayMessages.WithLabelValues("in", "invalid").Inc()
		_ = delivery.Nack(false, false)
		return
	}

	c.handle(evt)
	metrics.RelayMessages.WithLabelValues("in", "ok").Inc()

	if err := delivery.Ack(false); err != nil {
		c.logger.Warn("Failed to ACK relayed event", zap.String("type", evt.Type), zap.Error(err))
	}
}

// Close gracefully shuts down the consumer.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closeCh)

	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
