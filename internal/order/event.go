package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderCompleted = "OrderCompleted"

// Publisher is satisfied by *broker.KafkaProducer.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type OrderCompletedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transaction_id"`
	Total         decimal.Decimal    `json:"total"`
	DiscountCode  string             `json:"discount_code,omitempty"`
	Items         []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
