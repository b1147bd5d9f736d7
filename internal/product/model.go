package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
	Active    bool            `json:"active"`
	Featured  bool            `json:"featured"`
	ImageURL  *string         `json:"image_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ListOptions struct {
	Category   string
	OnlyActive bool
}

type UpdateInput struct {
	Name     *string
	Price    *decimal.Decimal
	Quantity *int
	Category *string
	Active   *bool
	Featured *bool
	ImageURL *string
}
