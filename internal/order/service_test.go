package order

import (
	"context"
	"sync"
	"testing"

	"smoothie-be/internal/cart"
	"smoothie-be/internal/coupon"
	"smoothie-be/internal/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*Order
	failure error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *Order) error {
	if f.failure != nil {
		return f.failure
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) List(_ context.Context, filter ListFilter) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Order
	for _, o := range f.orders {
		if filter.Phone != "" && o.Phone != filter.Phone {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateDeliveryStatus(_ context.Context, id string, status DeliveryStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.DeliveryStatus = status
	return nil
}

func (f *fakeOrderRepo) SetPaymentVerified(_ context.Context, id string, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentVerified = &verified
	return nil
}

func (f *fakeOrderRepo) ListPendingVerification(_ context.Context) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Order
	for _, o := range f.orders {
		if o.PaymentMethod == PaymentTransfer && o.SlipURL != "" && o.PaymentVerified == nil {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeCouponRepo struct {
	coupons map[string]*coupon.Coupon
}

func (f *fakeCouponRepo) GetByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	if c, ok := f.coupons[code]; ok {
		return c, nil
	}
	return nil, coupon.ErrNotFound
}

func (f *fakeCouponRepo) List(context.Context) ([]*coupon.Coupon, error)      { return nil, nil }
func (f *fakeCouponRepo) Create(context.Context, *coupon.Coupon) error       { return nil }
func (f *fakeCouponRepo) SetActive(context.Context, string, bool) error      { return nil }

type fakeCartService struct {
	items     map[string][]cart.CartItem
	committed []string
}

func (f *fakeCartService) AddToCart(context.Context, string, string, int) (*cart.CartItem, error) {
	return nil, nil
}

func (f *fakeCartService) GetCart(_ context.Context, sessionID string) ([]cart.CartItem, error) {
	return f.items[sessionID], nil
}

func (f *fakeCartService) Cancel(context.Context, string) (int, error) { return 0, nil }

func (f *fakeCartService) Commit(_ context.Context, sessionID string) error {
	f.committed = append(f.committed, sessionID)
	delete(f.items, sessionID)
	return nil
}

func newCheckoutFixture() (*fakeOrderRepo, *fakeCartService, Service) {
	repo := newFakeOrderRepo()
	carts := &fakeCartService{items: map[string][]cart.CartItem{
		"sess-1": {
			{ProductID: "prod-1", Name: "Mango Smoothie", Price: decimal.RequireFromString("150"), Quantity: 2},
			{ProductID: "prod-2", Name: "Berry Blast", Price: decimal.RequireFromString("120"), Quantity: 1},
		},
	}}
	coupons := &fakeCouponRepo{coupons: map[string]*coupon.Coupon{
		"SUMMER10": {ID: "cpn-1", Code: "SUMMER10", DiscountPercent: 10, Active: true},
	}}
	svc := NewService(repo, coupons, carts, events.Nop{}, nil)
	return repo, carts, svc
}

func TestCheckout_CashOrder(t *testing.T) {
	repo, carts, svc := newCheckoutFixture()

	o, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย ใจดี",
		Phone:         "0812345678",
		Address:       "99 ถนนสุขุมวิท",
		PaymentMethod: PaymentCash,
	})
	require.NoError(t, err)

	// 2x150 + 1x120
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("420")))
	assert.True(t, o.Total.Equal(decimal.RequireFromString("420")))
	assert.Equal(t, DeliveryPreparing, o.DeliveryStatus)
	assert.Nil(t, o.PaymentVerified)
	assert.NotEmpty(t, o.OrderNumber)

	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)

	// the cart was consumed
	assert.Equal(t, []string{"sess-1"}, carts.committed)
}

func TestCheckout_CouponDiscount(t *testing.T) {
	_, _, svc := newCheckoutFixture()

	o, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย",
		Phone:         "0812345678",
		PaymentMethod: PaymentCash,
		CouponCode:    "SUMMER10",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, o.DiscountPercent)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("378")), o.Total.String())
}

func TestCheckout_UnknownCoupon(t *testing.T) {
	_, _, svc := newCheckoutFixture()

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย",
		Phone:         "0812345678",
		PaymentMethod: PaymentCash,
		CouponCode:    "EXPIRED",
	})
	assert.ErrorIs(t, err, coupon.ErrNotFound)
}

func TestCheckout_TransferRequiresSlip(t *testing.T) {
	_, _, svc := newCheckoutFixture()

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย",
		Phone:         "0812345678",
		PaymentMethod: PaymentTransfer,
	})
	assert.ErrorIs(t, err, ErrSlipRequired)
}

func TestCheckout_CustomerRequired(t *testing.T) {
	_, _, svc := newCheckoutFixture()

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "  ",
		Phone:         "0812345678",
		PaymentMethod: PaymentCash,
	})
	assert.ErrorIs(t, err, ErrCustomerRequired)
}

func TestCheckout_EmptyCart(t *testing.T) {
	_, _, svc := newCheckoutFixture()

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-empty",
		CustomerName:  "สมชาย",
		Phone:         "0812345678",
		PaymentMethod: PaymentCash,
	})
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestCheckout_ZeroQuantityDefaultsToOne(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := &fakeCartService{items: map[string][]cart.CartItem{
		"sess-1": {{ProductID: "prod-1", Name: "Mango", Price: decimal.RequireFromString("100"), Quantity: 0}},
	}}
	svc := NewService(repo, &fakeCouponRepo{}, carts, events.Nop{}, nil)

	o, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย",
		Phone:         "0812345678",
		PaymentMethod: PaymentCash,
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("100")))
}

func TestSetDeliveryStatus_Transitions(t *testing.T) {
	repo, _, svc := newCheckoutFixture()

	o, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย",
		Phone:         "0812345678",
		PaymentMethod: PaymentCash,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetDeliveryStatus(context.Background(), o.ID, DeliveryShipping))
	require.NoError(t, svc.SetDeliveryStatus(context.Background(), o.ID, DeliveryDelivered))

	// delivered is terminal
	err = svc.SetDeliveryStatus(context.Background(), o.ID, DeliveryShipping)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, _ := repo.GetByID(context.Background(), o.ID)
	assert.Equal(t, DeliveryDelivered, stored.DeliveryStatus)
}

func TestSetDeliveryStatus_SkipAheadRejected(t *testing.T) {
	_, _, svc := newCheckoutFixture()

	o, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย",
		Phone:         "0812345678",
		PaymentMethod: PaymentCash,
	})
	require.NoError(t, err)

	assert.ErrorIs(t,
		svc.SetDeliveryStatus(context.Background(), o.ID, DeliveryDelivered),
		ErrInvalidTransition)
}

func TestListPendingVerification_AdaptsOrders(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := &fakeCartService{items: map[string][]cart.CartItem{
		"sess-1": {{ProductID: "prod-1", Name: "Mango", Price: decimal.RequireFromString("299"), Quantity: 1}},
	}}
	svc := NewService(repo, &fakeCouponRepo{}, carts, events.Nop{}, nil)

	o, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย ใจดี",
		Phone:         "0812345678",
		PaymentMethod: PaymentTransfer,
		SlipURL:       "https://cdn.example.com/slip.png",
	})
	require.NoError(t, err)

	pending, err := svc.ListPendingVerification(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, o.ID, pending[0].OrderID)
	assert.Equal(t, "https://cdn.example.com/slip.png", pending[0].SlipURL)
	assert.True(t, pending[0].ExpectedTotal.Equal(decimal.RequireFromString("299")))
	assert.Equal(t, "สมชาย ใจดี", pending[0].ExpectedName)

	// once a verdict lands the order leaves the sweep
	require.NoError(t, repo.SetPaymentVerified(context.Background(), o.ID, true))
	pending, err = svc.ListPendingVerification(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOverrideVerification(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := &fakeCartService{items: map[string][]cart.CartItem{
		"sess-1": {{ProductID: "prod-1", Name: "Mango", Price: decimal.RequireFromString("299"), Quantity: 1}},
	}}
	svc := NewService(repo, &fakeCouponRepo{}, carts, events.Nop{}, nil)

	o, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess-1",
		CustomerName:  "สมชาย ใจดี",
		Phone:         "0812345678",
		PaymentMethod: PaymentTransfer,
		SlipURL:       "https://cdn.example.com/slip.png",
	})
	require.NoError(t, err)
	require.Nil(t, o.PaymentVerified)

	require.NoError(t, svc.OverrideVerification(context.Background(), o.ID, true))
	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PaymentVerified)
	assert.True(t, *got.PaymentVerified)

	require.NoError(t, svc.OverrideVerification(context.Background(), o.ID, false))
	got, err = repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PaymentVerified)
	assert.False(t, *got.PaymentVerified)

	assert.ErrorIs(t, svc.OverrideVerification(context.Background(), "missing", true), ErrNotFound)
}
