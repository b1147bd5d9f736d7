// Package cart owns the shopping cart and the stock reservation ledger.
//
// Reservations are optimistic: adding a line decrements product stock right
// away and records a pending revert entry, which is consumed on checkout
// (CommitAll) or restored on cancel / idle timeout (RevertAll). The restore
// path is read-then-write across sessions, so a session that times out while
// another shopper holds the same product can transiently over-restore; the
// storage-level conditional decrement keeps stock from ever going negative.
package cart

import (
	"context"
	"time"

	"smoothie-be/internal/events"
	"smoothie-be/internal/logger"
	"smoothie-be/internal/metrics"
	"smoothie-be/internal/product"

	"go.uber.org/zap"
)

type Ledger struct {
	products product.Repository
	entries  EntryStore
	pub      events.Publisher
	stats    *metrics.Stats

	idle time.Duration
	now  func() time.Time
}

func NewLedger(
	products product.Repository,
	entries EntryStore,
	pub events.Publisher,
	stats *metrics.Stats,
	idle time.Duration,
) *Ledger {
	return &Ledger{
		products: products,
		entries:  entries,
		pub:      pub,
		stats:    stats,
		idle:     idle,
		now:      time.Now,
	}
}

// Reserve decrements stock for qty units and records a pending revert entry.
// A request that exceeds available stock fails with ErrInsufficientStock and
// performs no mutation. Returns the product as read before the decrement.
func (l *Ledger) Reserve(ctx context.Context, sessionID, productID string, qty int) (*product.Product, error) {
	if qty <= 0 {
		qty = 1
	}

	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if qty > p.Quantity {
		return nil, ErrInsufficientStock
	}

	if err := l.products.DecrementStock(ctx, productID, qty); err != nil {
		return nil, err
	}

	if err := l.entries.Append(ctx, sessionID, ReservationEntry{ProductID: productID, Qty: qty}); err != nil {
		// The decrement already happened; give the units back rather than
		// leave them unrecoverable.
		if restoreErr := l.products.IncrementStock(ctx, productID, qty); restoreErr != nil {
			logger.FromCtx(ctx).Error("failed to restore stock after ledger write failure",
				zap.String("product_id", productID),
				zap.Int("qty", qty),
				zap.Error(restoreErr),
			)
		}
		return nil, err
	}
	_ = l.entries.Touch(ctx, sessionID, l.now())

	l.stats.ReservationsMade.Inc()
	l.pub.Publish(ctx, events.TopicStockReserved, events.EventStockReserved, sessionID,
		events.StockReservedPayload{SessionID: sessionID, ProductID: productID, Qty: qty})

	return p, nil
}

// Pending returns the session's uncommitted reservation entries.
func (l *Ledger) Pending(ctx context.Context, sessionID string) ([]ReservationEntry, error) {
	return l.entries.List(ctx, sessionID)
}

// CommitAll clears the pending list without restoring stock. Used when the
// order has been placed and the decrements became permanent.
func (l *Ledger) CommitAll(ctx context.Context, sessionID string) error {
	return l.entries.Clear(ctx, sessionID)
}

// RevertAll restores every pending reservation and clears the list. Returns
// the number of entries restored.
func (l *Ledger) RevertAll(ctx context.Context, sessionID, reason string) (int, error) {
	pending, err := l.entries.List(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	log := logger.FromCtx(ctx).With(zap.String("session_id", sessionID))

	restored := 0
	items := make([]events.ItemQty, 0, len(pending))
	for _, e := range pending {
		err := l.products.IncrementStock(ctx, e.ProductID, e.Qty)
		if err == product.ErrNotFound {
			// product deleted meanwhile, nothing to restore
			continue
		}
		if err != nil {
			log.Error("failed to restore reserved stock",
				zap.String("product_id", e.ProductID),
				zap.Int("qty", e.Qty),
				zap.Error(err),
			)
			return restored, err
		}
		restored++
		items = append(items, events.ItemQty{ProductID: e.ProductID, Qty: e.Qty})
	}

	if err := l.entries.Clear(ctx, sessionID); err != nil {
		return restored, err
	}

	l.stats.ReservationsReverted.Add(uint64(restored))
	l.pub.Publish(ctx, events.TopicStockReleased, events.EventStockReleased, sessionID,
		events.StockReleasedPayload{SessionID: sessionID, Items: items, Reason: reason})

	log.Info("reverted pending reservations", zap.Int("restored", restored))
	return restored, nil
}

// StartJanitor reverts reservations of sessions idle for longer than the
// configured window. Runs until ctx is cancelled.
func (l *Ledger) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.revertIdle(ctx)
			}
		}
	}()
}

func (l *Ledger) revertIdle(ctx context.Context) {
	sessions, err := l.entries.IdleSessions(ctx, l.now().Add(-l.idle))
	if err != nil {
		logger.L().Warn("failed to scan idle reservation sessions", zap.Error(err))
		return
	}

	for _, sid := range sessions {
		if _, err := l.RevertAll(ctx, sid, "IDLE_TIMEOUT"); err != nil {
			logger.L().Warn("idle revert failed",
				zap.String("session_id", sid),
				zap.Error(err),
			)
		}
	}
}
