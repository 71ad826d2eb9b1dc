// Package notifier is the subscriber side of the order event stream. It
// consumes committed order events and fans customer-facing notifications
// out to the notifications exchange.
package notifier

import (
	"context"
	"fmt"

	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/messaging"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// Notification is the message delivered to notification channels.
type Notification struct {
	UserID  int64  `json:"user_id"`
	OrderID int64  `json:"order_id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Service consumes order events and emits notifications.
type Service struct {
	consumer  *messaging.Consumer
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// New creates a notifier over an established broker connection.
func New(conn *messaging.Connection, log *logger.Logger) *Service {
	return &Service{
		consumer:  messaging.NewConsumer(conn, log, messaging.OrderEventsQueue, "notifier", 10),
		publisher: messaging.NewPublisher(conn, log),
		logger:    log,
	}
}

// Run consumes order events until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.consumer.StartConsuming(ctx, s.handle)
}

func (s *Service) handle(ctx context.Context, body []byte) error {
	var event models.OrderEvent
	if err := messaging.ParseEvent(body, &event); err != nil {
		return err
	}

	notification := buildNotification(event)
	if notification == nil {
		s.logger.Debug("event_skipped", "No notification for event type", "",
			map[string]interface{}{"type": event.Type})
		return nil
	}

	if err := s.publisher.PublishNotification(ctx, notification); err != nil {
		return err
	}

	s.logger.Info("notification_sent", "Notification published", "", map[string]interface{}{
		"type":     event.Type,
		"order_id": event.OrderID,
		"user_id":  event.UserID,
	})
	return nil
}

func buildNotification(event models.OrderEvent) *Notification {
	switch event.Type {
	case models.EventOrderCreated:
		return &Notification{
			UserID:  event.UserID,
			OrderID: event.OrderID,
			Subject: "Order received",
			Body:    fmt.Sprintf("Your order #%d has been received. Total: %.2f.", event.OrderID, event.TotalPrice),
		}
	case models.EventOrderStatusChanged:
		return &Notification{
			UserID:  event.UserID,
			OrderID: event.OrderID,
			Subject: "Order update",
			Body:    fmt.Sprintf("Your order #%d is now %s.", event.OrderID, event.Status),
		}
	default:
		return nil
	}
}

// Close shuts the consumer down.
func (s *Service) Close() error {
	return s.consumer.Close()
}
