package order

import (
	"context"
	"strings"

	"smoothie-be/internal/cart"
	"smoothie-be/internal/coupon"
	"smoothie-be/internal/events"
	"smoothie-be/internal/logger"
	"smoothie-be/internal/slip"
	"smoothie-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier pushes order changes to live admin watchers.
type Notifier interface {
	OrderCreated(o *Order)
	DeliveryStatusChanged(orderID string, status DeliveryStatus)
}

type NopNotifier struct{}

func (NopNotifier) OrderCreated(*Order)                          {}
func (NopNotifier) DeliveryStatusChanged(string, DeliveryStatus) {}

type CheckoutInput struct {
	SessionID     string
	CustomerName  string
	Phone         string
	Address       string
	PaymentMethod PaymentMethod
	SlipURL       string
	CouponCode    string
}

type Service interface {
	// Checkout turns the session's cart into an order and commits its
	// reservations. The reserved stock stays deducted.
	Checkout(ctx context.Context, in CheckoutInput) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	History(ctx context.Context, phone string) ([]*Order, error)
	SetDeliveryStatus(ctx context.Context, id string, status DeliveryStatus) error

	// OverrideVerification lets an admin force the verdict regardless of
	// what the slip check concluded.
	OverrideVerification(ctx context.Context, id string, verified bool) error

	// PendingVerifications adapts unverified transfer orders for the
	// automatic slip-verification sweep.
	ListPendingVerification(ctx context.Context) ([]slip.PendingOrder, error)
}

type service struct {
	repo    Repository
	coupons coupon.Repository
	carts   cart.Service
	pub     events.Publisher
	notify  Notifier
}

func NewService(repo Repository, coupons coupon.Repository, carts cart.Service, pub events.Publisher, notify Notifier) Service {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &service{repo: repo, coupons: coupons, carts: carts, pub: pub, notify: notify}
}

func (s *service) Checkout(ctx context.Context, in CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("session_id", in.SessionID))

	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.Phone) == "" {
		return nil, ErrCustomerRequired
	}
	if in.PaymentMethod != PaymentCash && in.PaymentMethod != PaymentTransfer {
		in.PaymentMethod = PaymentCash
	}
	if in.PaymentMethod == PaymentTransfer && strings.TrimSpace(in.SlipURL) == "" {
		return nil, ErrSlipRequired
	}

	items, err := s.carts.GetCart(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, cart.ErrEmptyCart
	}

	subtotal := decimal.Zero
	orderItems := make([]OrderItem, 0, len(items))
	for _, it := range items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := it.Price.Mul(decimal.NewFromInt(int64(qty)))
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  qty,
			Subtotal:  lineTotal,
		})
	}

	discount := 0
	couponCode := ""
	if strings.TrimSpace(in.CouponCode) != "" {
		c, err := s.coupons.GetByCode(ctx, in.CouponCode)
		if err != nil {
			return nil, err
		}
		discount = c.DiscountPercent
		couponCode = c.Code
	}

	total := applyDiscount(subtotal, discount)

	o := &Order{
		ID:              uuid.NewString(),
		OrderNumber:     utils.GenerateOrderNumber(),
		SessionID:       in.SessionID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		Phone:           strings.TrimSpace(in.Phone),
		Address:         strings.TrimSpace(in.Address),
		PaymentMethod:   in.PaymentMethod,
		SlipURL:         strings.TrimSpace(in.SlipURL),
		PaymentVerified: nil,
		DeliveryStatus:  DeliveryPreparing,
		Subtotal:        subtotal,
		CouponCode:      couponCode,
		DiscountPercent: discount,
		Total:           total,
		Items:           orderItems,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	// The reservations already deducted stock; commit just clears the
	// pending entries so the idle janitor cannot restore them.
	if err := s.carts.Commit(ctx, in.SessionID); err != nil {
		log.Warn("failed to clear cart after checkout", zap.Error(err))
	}

	s.pub.Publish(ctx, events.TopicOrderCreated, events.EventOrderCreated, o.ID, events.OrderCreatedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Total:       o.Total.StringFixed(2),
		Payment:     string(o.PaymentMethod),
	})
	s.notify.OrderCreated(o)

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total.StringFixed(2)),
	)
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) History(ctx context.Context, phone string) ([]*Order, error) {
	return s.repo.List(ctx, ListFilter{Phone: phone})
}

func (s *service) SetDeliveryStatus(ctx context.Context, id string, status DeliveryStatus) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ValidTransition(o.DeliveryStatus, status) {
		return ErrInvalidTransition
	}

	if err := s.repo.UpdateDeliveryStatus(ctx, id, status); err != nil {
		return err
	}

	s.pub.Publish(ctx, events.TopicDeliveryStatus, events.EventDeliveryStatusChanged, id, events.DeliveryStatusPayload{
		OrderID: id,
		Status:  string(status),
	})
	s.notify.DeliveryStatusChanged(id, status)
	return nil
}

func (s *service) OverrideVerification(ctx context.Context, id string, verified bool) error {
	if err := s.repo.SetPaymentVerified(ctx, id, verified); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("verification verdict overridden",
		zap.String("order_id", id),
		zap.Bool("verified", verified),
	)
	s.pub.Publish(ctx, events.TopicSlipVerification, events.EventSlipVerificationDone, id, events.SlipVerificationPayload{
		OrderID:  id,
		Outcome:  "manual-override",
		Verified: verified,
	})
	return nil
}

func (s *service) ListPendingVerification(ctx context.Context) ([]slip.PendingOrder, error) {
	orders, err := s.repo.ListPendingVerification(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]slip.PendingOrder, 0, len(orders))
	for _, o := range orders {
		pending = append(pending, slip.PendingOrder{
			OrderID:       o.ID,
			SlipURL:       o.SlipURL,
			ExpectedTotal: o.Total,
			ExpectedName:  o.CustomerName,
		})
	}
	return pending, nil
}

func applyDiscount(subtotal decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return subtotal
	}
	if percent > 100 {
		percent = 100
	}
	factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return subtotal.Mul(factor).Round(2)
}
