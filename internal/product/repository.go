package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, input UpdateInput) error

	// DecrementStock reserves qty units. The decrement is conditional at the
	// storage layer: it only applies when quantity >= qty, so stock can never
	// go negative even when two sessions race.
	DecrementStock(ctx context.Context, id string, qty int) error
	// IncrementStock restores qty units previously reserved.
	IncrementStock(ctx context.Context, id string, qty int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	query := `
		SELECT id, name, price, COALESCE(quantity, 0), COALESCE(category, ''),
		       active, featured, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Quantity, &p.Category,
		&p.Active, &p.Featured, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, error) {
	query := `
		SELECT id, name, price, COALESCE(quantity, 0), COALESCE(category, ''),
		       active, featured, image_url, created_at, updated_at
		FROM products
	`

	var conds []string
	var args []any
	if opts.Category != "" {
		args = append(args, opts.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if opts.OnlyActive {
		conds = append(conds, "active = TRUE")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.Quantity, &p.Category,
			&p.Active, &p.Featured, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, quantity, category, active, featured, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, p.Price, p.Quantity, p.Category, p.Active, p.Featured, p.ImageURL)
	return err
}

func (r *repository) Update(ctx context.Context, id string, input UpdateInput) error {
	var sets []string
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if input.Name != nil {
		add("name", *input.Name)
	}
	if input.Price != nil {
		add("price", *input.Price)
	}
	if input.Quantity != nil {
		add("quantity", *input.Quantity)
	}
	if input.Category != nil {
		add("category", *input.Category)
	}
	if input.Active != nil {
		add("active", *input.Active)
	}
	if input.Featured != nil {
		add("featured", *input.Featured)
	}
	if input.ImageURL != nil {
		add("image_url", *input.ImageURL)
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DecrementStock(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("invalid quantity: %d", qty)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`, id, qty)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the product is gone or the stock guard rejected the write.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *repository) IncrementStock(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("invalid quantity: %d", qty)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
	`, id, qty)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
