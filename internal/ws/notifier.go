package ws

import (
	"smoothie-be/internal/order"
	"smoothie-be/internal/slip"
	"smoothie-be/internal/utils"
)

// Message types pushed to the dashboard.
const (
	TypeOrderCreated       = "order_created"
	TypeDeliveryStatus     = "delivery_status"
	TypeVerificationStatus = "verification_status"
)

// OrderNotifier adapts the hub to the order service's push contract.
type OrderNotifier struct {
	Hub *Hub
}

func (n OrderNotifier) OrderCreated(o *order.Order) {
	n.Hub.Broadcast(TypeOrderCreated, map[string]any{
		"order_id":        o.ID,
		"order_number":    o.OrderNumber,
		"customer_name":   o.CustomerName,
		"payment_method":  string(o.PaymentMethod),
		"delivery_status": string(o.DeliveryStatus),
		"total":           o.Total.StringFixed(2),
		"total_display":   utils.FormatBaht(o.Total),
	})
}

func (n OrderNotifier) DeliveryStatusChanged(orderID string, status order.DeliveryStatus) {
	n.Hub.Broadcast(TypeDeliveryStatus, map[string]any{
		"order_id": orderID,
		"status":   string(status),
	})
}

// VerificationSink adapts the hub to the slip verifier's push contract.
type VerificationSink struct {
	Hub *Hub
}

func (s VerificationSink) VerificationStatus(orderID string, state slip.State, reason slip.RejectReason, res *slip.Result) {
	payload := map[string]any{
		"order_id": orderID,
		"state":    string(state),
	}
	if reason != slip.ReasonNone {
		payload["reason"] = string(reason)
	}
	if res != nil {
		payload["outcome"] = string(res.Outcome)
		payload["amount_match"] = res.AmountMatch
		payload["name_match"] = res.NameMatch
	}
	s.Hub.Broadcast(TypeVerificationStatus, payload)
}
