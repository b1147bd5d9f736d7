package cart

import (
	"errors"

	"smoothie-be/internal/product"
)

var (
	ErrProductNotFound   = product.ErrNotFound
	ErrInsufficientStock = product.ErrInsufficientStock
	ErrEmptyCart         = errors.New("cart is empty")
)
