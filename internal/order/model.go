package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

// DeliveryStatus follows the kitchen's lifecycle. Cancelled is terminal.
type DeliveryStatus string

const (
	DeliveryPreparing DeliveryStatus = "preparing"
	DeliveryShipping  DeliveryStatus = "shipping"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

// ValidTransition reports whether the delivery status may move from -> to.
// Delivered and cancelled are terminal.
func ValidTransition(from, to DeliveryStatus) bool {
	switch from {
	case DeliveryPreparing:
		return to == DeliveryShipping || to == DeliveryCancelled
	case DeliveryShipping:
		return to == DeliveryDelivered || to == DeliveryCancelled
	default:
		return false
	}
}

type Order struct {
	ID           string
	OrderNumber  string
	SessionID    string
	CustomerName string
	Phone        string
	Address      string

	PaymentMethod PaymentMethod
	SlipURL       string
	// PaymentVerified is tri-state: nil means no verification verdict yet.
	PaymentVerified *bool

	DeliveryStatus DeliveryStatus

	Subtotal        decimal.Decimal
	CouponCode      string
	DiscountPercent int
	Total           decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []OrderItem
}

type OrderItem struct {
	ID        int64
	OrderID   string
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

// ListFilter narrows the admin order list. Zero value lists everything.
type ListFilter struct {
	Phone          string
	DeliveryStatus DeliveryStatus
	Unverified     bool
}
