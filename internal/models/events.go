package models

import "time"

// Order event types published to the orders_topic exchange. The event type
// doubles as the routing key.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message emitted by the order lifecycle manager after a
// committed mutation. Subscribers (mail, referral crediting) consume it
// outside the order transaction.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	Status     string    `json:"status"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}
