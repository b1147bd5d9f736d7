package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated          = "OrderCreated"
	EventStockReserved         = "StockReserved"
	EventStockReleased         = "StockReleased"
	EventSlipVerificationDone  = "SlipVerificationCompleted"
	EventDeliveryStatusChanged = "DeliveryStatusChanged"
)

const (
	TopicOrderCreated     = "order.created"
	TopicStockReserved    = "order.stock.reserved"
	TopicStockReleased    = "order.stock.released"
	TopicSlipVerification = "order.slip.verification"
	TopicDeliveryStatus   = "order.delivery.status"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload types per event ----

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Total       string `json:"total"`
	Payment     string `json:"payment_method"`
}

type StockReservedPayload struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type StockReleasedPayload struct {
	SessionID string    `json:"session_id"`
	Items     []ItemQty `json:"items"`
	Reason    string    `json:"reason"` // CANCELLED | IDLE_TIMEOUT
}

type SlipVerificationPayload struct {
	OrderID     string `json:"order_id"`
	Outcome     string `json:"outcome"`
	AmountMatch bool   `json:"amount_match"`
	NameMatch   bool   `json:"name_match"`
	Verified    bool   `json:"verified"`
	Reason      string `json:"reason,omitempty"`
}

type DeliveryStatusPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// Partition key = correlation id, so all events of one order stay ordered.
func PartitionKey(id string) []byte { return []byte(id) }
