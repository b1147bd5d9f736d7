package order

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Repository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	UpdateDeliveryStatus(ctx context.Context, id string, status DeliveryStatus) error
	SetPaymentVerified(ctx context.Context, id string, verified bool) error
	// ListPendingVerification returns transfer orders with a slip attached
	// and no verification verdict yet.
	ListPendingVerification(ctx context.Context) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, order_number, session_id, customer_name, phone, address,
	payment_method, COALESCE(slip_url, ''), payment_verified,
	delivery_status, subtotal, COALESCE(coupon_code, ''),
	COALESCE(discount_percent, 0), total, created_at, updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.SessionID, &o.CustomerName, &o.Phone, &o.Address,
		&o.PaymentMethod, &o.SlipURL, &o.PaymentVerified,
		&o.DeliveryStatus, &o.Subtotal, &o.CouponCode,
		&o.DiscountPercent, &o.Total, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, session_id, customer_name, phone, address,
			payment_method, slip_url, payment_verified, delivery_status,
			subtotal, coupon_code, discount_percent, total
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		o.ID, o.OrderNumber, o.SessionID, o.CustomerName, o.Phone, o.Address,
		o.PaymentMethod, o.SlipURL, o.PaymentVerified, o.DeliveryStatus,
		o.Subtotal, o.CouponCode, o.DiscountPercent, o.Total,
	)
	if err != nil {
		return err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, o.ID, item.ProductID, item.Name, item.Price, item.Quantity, item.Subtotal)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders`, orderColumns)

	var conds []string
	var args []any
	if filter.Phone != "" {
		args = append(args, filter.Phone)
		conds = append(conds, fmt.Sprintf("phone = $%d", len(args)))
	}
	if filter.DeliveryStatus != "" {
		args = append(args, filter.DeliveryStatus)
		conds = append(conds, fmt.Sprintf("delivery_status = $%d", len(args)))
	}
	if filter.Unverified {
		conds = append(conds, "payment_verified IS NULL")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		items, err := r.itemsFor(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}

	return orders, nil
}

func (r *repository) itemsFor(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func (r *repository) UpdateDeliveryStatus(ctx context.Context, id string, status DeliveryStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET delivery_status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetPaymentVerified(ctx context.Context, id string, verified bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_verified = $2, updated_at = NOW() WHERE id = $1
	`, id, verified)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListPendingVerification(ctx context.Context) ([]*Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE payment_method = 'transfer'
		  AND COALESCE(slip_url, '') <> ''
		  AND payment_verified IS NULL
		ORDER BY created_at
	`, orderColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}
