package order

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid delivery status transition")
	ErrSlipRequired      = errors.New("transfer orders require a slip")
	ErrCustomerRequired  = errors.New("customer name and phone are required")
)
