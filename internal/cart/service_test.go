package cart

import (
	"context"
	"testing"
	"time"

	"smoothie-be/internal/events"
	"smoothie-be/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLineStore is an in-memory LineStore.
type memLineStore struct {
	lines map[string][]CartItem
}

func newMemLineStore() *memLineStore {
	return &memLineStore{lines: make(map[string][]CartItem)}
}

func (m *memLineStore) GetLines(ctx context.Context, sessionID string) ([]CartItem, error) {
	return append([]CartItem(nil), m.lines[sessionID]...), nil
}

func (m *memLineStore) SetLines(ctx context.Context, sessionID string, lines []CartItem) error {
	m.lines[sessionID] = lines
	return nil
}

func (m *memLineStore) ClearLines(ctx context.Context, sessionID string) error {
	delete(m.lines, sessionID)
	return nil
}

func newTestService(stock map[string]int) (Service, *fakeProductRepo, *memLineStore) {
	products := newFakeProductRepo(stock)
	entries := newMemEntryStore()
	ledger := NewLedger(products, entries, events.Nop{}, &metrics.Stats{}, 15*time.Minute)
	lines := newMemLineStore()
	return NewService(ledger, lines), products, lines
}

func TestService_AddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("NewLine", func(t *testing.T) {
		svc, products, _ := newTestService(map[string]int{"p1": 5})

		item, err := svc.AddToCart(ctx, "sess-1", "p1", 1)
		require.NoError(t, err)

		assert.Equal(t, "p1", item.ProductID)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, 4, item.Stock)
		assert.Equal(t, 4, products.quantity("p1"))
	})

	t.Run("ExistingLineAccumulates", func(t *testing.T) {
		svc, _, _ := newTestService(map[string]int{"p1": 5})

		_, err := svc.AddToCart(ctx, "sess-1", "p1", 1)
		require.NoError(t, err)
		item, err := svc.AddToCart(ctx, "sess-1", "p1", 2)
		require.NoError(t, err)

		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, 2, item.Stock)

		lines, err := svc.GetCart(ctx, "sess-1")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 3, lines[0].Quantity)
	})

	t.Run("OutOfStockLeavesCartUntouched", func(t *testing.T) {
		svc, products, _ := newTestService(map[string]int{"p1": 2})

		_, err := svc.AddToCart(ctx, "sess-1", "p1", 3)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		assert.Equal(t, 2, products.quantity("p1"))
		lines, err := svc.GetCart(ctx, "sess-1")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("MissingSession", func(t *testing.T) {
		svc, _, _ := newTestService(map[string]int{"p1": 2})
		_, err := svc.AddToCart(ctx, "", "p1", 1)
		assert.Error(t, err)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	svc, products, lines := newTestService(map[string]int{"p1": 5})

	_, err := svc.AddToCart(ctx, "sess-1", "p1", 2)
	require.NoError(t, err)

	restored, err := svc.Cancel(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	assert.Equal(t, 5, products.quantity("p1"))
	assert.Empty(t, lines.lines["sess-1"])
}

func TestService_Commit(t *testing.T) {
	ctx := context.Background()
	svc, products, lines := newTestService(map[string]int{"p1": 5})

	_, err := svc.AddToCart(ctx, "sess-1", "p1", 2)
	require.NoError(t, err)

	require.NoError(t, svc.Commit(ctx, "sess-1"))

	// stock stays decremented, cart emptied
	assert.Equal(t, 3, products.quantity("p1"))
	assert.Empty(t, lines.lines["sess-1"])
}
