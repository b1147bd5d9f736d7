package cart

import (
	"context"
	"errors"
)

// Service defines the business logic for carts.
type Service interface {
	AddToCart(ctx context.Context, sessionID, productID string, qty int) (*CartItem, error)
	GetCart(ctx context.Context, sessionID string) ([]CartItem, error)
	// Cancel reverts all pending reservations and empties the cart.
	Cancel(ctx context.Context, sessionID string) (int, error)
	// Checkout consumed the cart: commit reservations and clear lines.
	Commit(ctx context.Context, sessionID string) error
}

type service struct {
	ledger *Ledger
	lines  LineStore
}

func NewService(ledger *Ledger, lines LineStore) Service {
	return &service{ledger: ledger, lines: lines}
}

func (s *service) AddToCart(ctx context.Context, sessionID, productID string, qty int) (*CartItem, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}
	if qty <= 0 {
		qty = 1
	}

	p, err := s.ledger.Reserve(ctx, sessionID, productID, qty)
	if err != nil {
		return nil, err
	}

	lines, err := s.lines.GetLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	newStock := p.Quantity - qty

	var line *CartItem
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += qty
			lines[i].Stock = newStock
			line = &lines[i]
			break
		}
	}
	if line == nil {
		lines = append(lines, CartItem{
			ProductID: productID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
			Stock:     newStock,
		})
		line = &lines[len(lines)-1]
	}

	if err := s.lines.SetLines(ctx, sessionID, lines); err != nil {
		return nil, err
	}

	item := *line
	return &item, nil
}

func (s *service) GetCart(ctx context.Context, sessionID string) ([]CartItem, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}
	return s.lines.GetLines(ctx, sessionID)
}

func (s *service) Cancel(ctx context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, errors.New("session ID is required")
	}

	restored, err := s.ledger.RevertAll(ctx, sessionID, "CANCELLED")
	if err != nil {
		return restored, err
	}

	return restored, s.lines.ClearLines(ctx, sessionID)
}

func (s *service) Commit(ctx context.Context, sessionID string) error {
	if err := s.ledger.CommitAll(ctx, sessionID); err != nil {
		return err
	}
	return s.lines.ClearLines(ctx, sessionID)
}
