package messaging

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/eyabmansour/pfe-licence-api/internal/config"
	"github.com/eyabmansour/pfe-licence-api/internal/logger"
)

// Exchange and queue names for the order event pipeline.
const (
	OrdersExchange        = "orders_topic"
	NotificationsExchange = "notifications_fanout"
	OrderEventsQueue      = "order_events"
	NotificationsQueue    = "notifications_queue"
)

// Connection wraps a RabbitMQ connection with reconnection logic.
type Connection struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	config  *config.Config
	logger  *logger.Logger
	url     string
}

// New creates a new RabbitMQ connection and declares the topology.
func New(cfg *config.Config, log *logger.Logger) (*Connection, error) {
	conn := &Connection{
		config: cfg,
		logger: log,
		url:    cfg.RabbitMQURL(),
	}

	if err := conn.connect(); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}

	return conn, nil
}

// connect dials the broker with a growing backoff and declares the
// topology once the channel is open.
func (c *Connection) connect() error {
	const maxAttempts = 5

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = c.dialOnce()
		if lastErr == nil {
			return nil
		}

		if attempt < maxAttempts {
			backoff := time.Duration(attempt) * 2 * time.Second
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", backoff),
				"startup", lastErr, nil)
			time.Sleep(backoff)
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Connection) dialOnce() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	c.conn = conn
	c.channel = channel
	if err := c.setupTopology(); err != nil {
		c.close()
		return fmt.Errorf("failed to set up topology: %w", err)
	}
	return nil
}

// setupTopology declares the exchanges and queues of the order event
// pipeline: a topic exchange carrying order lifecycle events and a fanout
// exchange for notification subscribers. All declarations are durable.
func (c *Connection) setupTopology() error {
	exchanges := []struct {
		name string
		kind string
	}{
		{OrdersExchange, "topic"},
		{NotificationsExchange, "fanout"},
	}
	for _, ex := range exchanges {
		if err := c.channel.ExchangeDeclare(ex.name, ex.kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare %s exchange: %w", ex.name, err)
		}
	}

	// All order.* events (created, status_changed) land in one queue.
	// The fanout binding ignores its routing key.
	bindings := []struct {
		queue      string
		routingKey string
		exchange   string
	}{
		{OrderEventsQueue, "order.*", OrdersExchange},
		{NotificationsQueue, "", NotificationsExchange},
	}
	for _, b := range bindings {
		if _, err := c.channel.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}
		if err := c.channel.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

// Channel returns the current channel.
func (c *Connection) Channel() *amqp091.Channel {
	return c.channel
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsClosed checks if the connection is closed.
func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect attempts to reconnect to RabbitMQ.
func (c *Connection) Reconnect() error {
	c.close()
	return c.connect()
}
