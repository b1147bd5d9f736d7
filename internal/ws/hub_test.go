package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smoothie-be/internal/order"
	"smoothie-be/internal/slip"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	conn := dialHub(t, h)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.Broadcast(TypeDeliveryStatus, map[string]any{"order_id": "ord-1", "status": "shipping"})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeDeliveryStatus, msg.Type)

	payload := msg.Payload.(map[string]any)
	assert.Equal(t, "ord-1", payload["order_id"])
	assert.Equal(t, "shipping", payload["status"])
}

func TestHub_MultipleClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	conn1 := dialHub(t, h)
	conn2 := dialHub(t, h)

	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	h.Broadcast(TypeOrderCreated, map[string]any{"order_id": "ord-9"})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := readMessage(t, conn)
		assert.Equal(t, TypeOrderCreated, msg.Type)
	}
}

func TestOrderNotifier_ShapesPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	conn := dialHub(t, h)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	n := OrderNotifier{Hub: h}
	n.OrderCreated(&order.Order{
		ID:             "ord-1",
		OrderNumber:    "ORD-X",
		CustomerName:   "สมชาย",
		PaymentMethod:  order.PaymentTransfer,
		DeliveryStatus: order.DeliveryPreparing,
		Total:          decimal.RequireFromString("299"),
	})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeOrderCreated, msg.Type)

	payload := msg.Payload.(map[string]any)
	assert.Equal(t, "ORD-X", payload["order_number"])
	assert.Equal(t, "299.00", payload["total"])
	assert.Equal(t, "฿299.00", payload["total_display"])
}

func TestVerificationSink_IncludesReasonAndResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	conn := dialHub(t, h)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s := VerificationSink{Hub: h}
	s.VerificationStatus("ord-2", slip.StateRejected, slip.ReasonNoMatch, &slip.Result{
		Outcome:     slip.OutcomeAmountMismatch,
		AmountMatch: false,
		NameMatch:   true,
	})

	msg := readMessage(t, conn)
	payload := msg.Payload.(map[string]any)
	assert.Equal(t, "rejected", payload["state"])
	assert.Equal(t, "no-match", payload["reason"])
	assert.Equal(t, true, payload["name_match"])
}
