package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRowColumns() []string {
	return []string{
		"id", "order_number", "session_id", "customer_name", "phone", "address",
		"payment_method", "slip_url", "payment_verified",
		"delivery_status", "subtotal", "coupon_code",
		"discount_percent", "total", "created_at", "updated_at",
	}
}

func itemColumns() []string {
	return []string{"id", "order_id", "product_id", "name", "price", "quantity", "subtotal"}
}

func sampleOrder() *Order {
	return &Order{
		ID:             "ord-1",
		OrderNumber:    "ORD-20260831-101500-001-0042",
		SessionID:      "sess-1",
		CustomerName:   "สมชาย ใจดี",
		Phone:          "0812345678",
		Address:        "99 ถนนสุขุมวิท",
		PaymentMethod:  PaymentTransfer,
		SlipURL:        "https://cdn.example.com/slip.png",
		DeliveryStatus: DeliveryPreparing,
		Subtotal:       decimal.RequireFromString("300"),
		Total:          decimal.RequireFromString("270"),
		CouponCode:     "SUMMER10",
		DiscountPercent: 10,
		Items: []OrderItem{
			{ProductID: "prod-1", Name: "Mango Smoothie", Price: decimal.RequireFromString("150"), Quantity: 2, Subtotal: decimal.RequireFromString("300")},
		},
	}
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Create(context.Background(), sampleOrder()))
	})

	t.Run("ItemInsertFailsRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		assert.Error(t, repo.Create(context.Background(), sampleOrder()))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		verified := true
		rows := sqlmock.NewRows(orderRowColumns()).AddRow(
			"ord-1", "ORD-1", "sess-1", "สมชาย", "0812345678", "addr",
			"transfer", "https://x/slip.png", verified,
			"preparing", "300", "SUMMER10", 10, "270", now, now,
		)
		mock.ExpectQuery(`SELECT(.|\n)+FROM orders`).
			WithArgs("ord-1").
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT id, order_id, product_id`).
			WithArgs("ord-1").
			WillReturnRows(sqlmock.NewRows(itemColumns()).
				AddRow(1, "ord-1", "prod-1", "Mango Smoothie", "150", 2, "300"))

		o, err := repo.GetByID(context.Background(), "ord-1")
		require.NoError(t, err)
		assert.Equal(t, "สมชาย", o.CustomerName)
		require.NotNil(t, o.PaymentVerified)
		assert.True(t, *o.PaymentVerified)
		require.Len(t, o.Items, 1)
		assert.Equal(t, 2, o.Items[0].Quantity)
	})

	t.Run("UnknownVerdictScansAsNil", func(t *testing.T) {
		rows := sqlmock.NewRows(orderRowColumns()).AddRow(
			"ord-2", "ORD-2", "sess-2", "สมหญิง", "0899999999", "addr",
			"transfer", "https://x/slip2.png", nil,
			"preparing", "150", "", 0, "150", now, now,
		)
		mock.ExpectQuery(`SELECT(.|\n)+FROM orders`).
			WithArgs("ord-2").
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT id, order_id, product_id`).
			WithArgs("ord-2").
			WillReturnRows(sqlmock.NewRows(itemColumns()))

		o, err := repo.GetByID(context.Background(), "ord-2")
		require.NoError(t, err)
		assert.Nil(t, o.PaymentVerified)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT(.|\n)+FROM orders`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(orderRowColumns()))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetPaymentVerified(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET payment_verified`).
			WithArgs("ord-1", true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetPaymentVerified(context.Background(), "ord-1", true))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET payment_verified`).
			WithArgs("missing", false).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetPaymentVerified(context.Background(), "missing", false), ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListPendingVerification(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(orderRowColumns()).AddRow(
		"ord-3", "ORD-3", "sess-3", "วิชัย", "0811111111", "addr",
		"transfer", "https://x/slip3.png", nil,
		"preparing", "200", "", 0, "200", now, now,
	)
	mock.ExpectQuery(`payment_verified IS NULL`).WillReturnRows(rows)

	pending, err := repo.ListPendingVerification(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ord-3", pending[0].ID)
	assert.Nil(t, pending[0].PaymentVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateDeliveryStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE orders SET delivery_status`).
		WithArgs("ord-1", DeliveryShipping).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateDeliveryStatus(context.Background(), "ord-1", DeliveryShipping))
	assert.NoError(t, mock.ExpectationsWereMet())
}
