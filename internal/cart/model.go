package cart

import (
	"github.com/shopspring/decimal"
)

// CartItem mirrors the line shape kept in the session store.
type CartItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

// ReservationEntry records a stock decrement that still has to be either
// committed (order placed) or reverted (cancel / idle timeout).
type ReservationEntry struct {
	ProductID string `json:"id"`
	Qty       int    `json:"revert"`
}
