package coupon

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("coupon not found")

type Repository interface {
	// GetByCode looks up an active coupon, case-insensitively.
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	SetActive(ctx context.Context, id string, active bool) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `
		SELECT id, code, discount_percent, active, created_at, updated_at
		FROM coupons
		WHERE LOWER(code) = $1 AND active = TRUE
	`

	var c Coupon
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(code))).Scan(
		&c.ID, &c.Code, &c.DiscountPercent, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) List(ctx context.Context) ([]*Coupon, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, discount_percent, active, created_at, updated_at
		FROM coupons
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []*Coupon
	for rows.Next() {
		var c Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		coupons = append(coupons, &c)
	}

	return coupons, rows.Err()
}

func (r *repository) Create(ctx context.Context, c *Coupon) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO coupons (id, code, discount_percent, active)
		VALUES ($1, $2, $3, $4)
	`, c.ID, c.Code, c.DiscountPercent, c.Active)
	return err
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE coupons SET active = $2, updated_at = NOW() WHERE id = $1
	`, id, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
