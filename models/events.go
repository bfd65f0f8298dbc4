package models

import "time"

// Event types published to Kafka.
const (
	EventOrderCreated    = "order_created"
	EventPaymentSuccess  = "payment_succeeded"
	EventPaymentFailed   = "payment_failed"
	EventPaymentRefunded = "payment_refunded"
)

type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	OrderNumber string    `json:"order_number"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

type PaymentEvent struct {
	Type             string    `json:"type"`
	OrderID          string    `json:"order_id"`
	UserID           string    `json:"user_id"`
	PaymentIntentID  string    `json:"payment_intent_id"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	Amount           int64     `json:"amount"` // smallest currency unit
	Currency         string    `json:"currency"`
	Timestamp        time.Time `json:"timestamp"` // UTC event time
}
