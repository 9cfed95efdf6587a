package notify

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ordermgmt-be/internal/order"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	receipt := &order.Receipt{OrderID: 41, OrderNo: 3, OrderDate: "2024-05-01", Total: decimal.RequireFromString("23.01")}
	require.NoError(t, hub.Publish(context.Background(), order.NewOrderEvent(receipt, time.Now())))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var envelope struct {
			Event string `json:"event"`
			Data  struct {
				OrderID int64 `json:"order_id"`
				OrderNo int64 `json:"order_no"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &envelope))
		assert.Equal(t, order.EventNewOrder, envelope.Event)
		assert.Equal(t, int64(41), envelope.Data.OrderID)
		assert.Equal(t, int64(3), envelope.Data.OrderNo)
	}
}

func TestHub_ForgetsDisconnectedClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	// publishing with nobody listening is fine
	assert.NoError(t, hub.Publish(context.Background(), order.Event{Name: "noop"}))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
