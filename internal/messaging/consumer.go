package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/eyabmansour/pfe-licence-api/internal/logger"
)

// ErrBadMessage marks a message body that can never be processed.
// Deliveries failing with it are dropped instead of requeued, so one
// malformed message cannot loop through the queue forever.
var ErrBadMessage = errors.New("malformed message")

// EventHandler processes one delivered message body.
type EventHandler func(ctx context.Context, body []byte) error

// Consumer consumes order events from a queue with manual acknowledgement.
// The notifier service mode runs one of these against OrderEventsQueue.
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a new consumer for the given queue.
func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// StartConsuming consumes messages until the context is cancelled. Failed
// handlers nack with requeue; successful ones ack.
func (c *Consumer) StartConsuming(ctx context.Context, handler EventHandler) error {
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	if err := c.conn.Channel().Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.conn.Channel().Consume(
		c.queueName,   // queue
		c.consumerTag, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consumer_started",
		fmt.Sprintf("Started consuming from queue %s", c.queueName),
		"", map[string]interface{}{
			"queue":    c.queueName,
			"consumer": c.consumerTag,
			"prefetch": c.prefetch,
		})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				c.logger.Error("consumer_channel_closed", "Message channel closed, attempting to reconnect", "", nil, nil)
				if err := c.conn.Reconnect(); err != nil {
					return fmt.Errorf("failed to reconnect after channel closed: %w", err)
				}
				return c.StartConsuming(ctx, handler)
			}
			c.handleDelivery(ctx, d, handler)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler EventHandler) {
	handlerCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := handler(handlerCtx, delivery.Body); err != nil {
		requeue := shouldRequeue(err)
		c.logger.Error("event_processing_failed", "Failed to process event", "", err, map[string]interface{}{
			"queue":       c.queueName,
			"routing_key": delivery.RoutingKey,
			"requeue":     requeue,
		})
		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			c.logger.Error("event_nack_failed", "Failed to nack event", "", nackErr, nil)
		}
		return
	}

	if ackErr := delivery.Ack(false); ackErr != nil {
		c.logger.Error("event_ack_failed", "Failed to ack event", "", ackErr, nil)
	}
}

// shouldRequeue distinguishes transient handler failures, which are
// worth redelivering, from bodies that will fail identically every time.
func shouldRequeue(err error) bool {
	return !errors.Is(err, ErrBadMessage)
}

// ParseEvent parses a JSON event body into the provided struct. Parse
// failures wrap ErrBadMessage: redelivery cannot fix a bad body.
func ParseEvent(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	return nil
}

// Close cancels the consumer and closes the connection.
func (c *Consumer) Close() error {
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Channel().Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
		}
		return c.conn.Close()
	}
	return nil
}
