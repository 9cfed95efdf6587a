package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ordermgmt-be/internal/order"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (r *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	r.channel = channel
	r.payload, _ = message.([]byte)
	return redis.NewIntResult(1, r.err)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt order.Event) error {
	return m.Called(ctx, evt).Error(0)
}

func statusEvent() order.Event {
	return order.StatusChangedEvent(&order.TransitionResult{
		OrderID: 9, OrderNo: 2, Status: order.StatusDone,
	}, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
}

func TestKafkaPublisher(t *testing.T) {
	t.Run("WritesKeyedMessage", func(t *testing.T) {
		w := &fakeWriter{}
		p := NewKafkaPublisher(w)

		require.NoError(t, p.Publish(context.Background(), statusEvent()))
		require.Len(t, w.msgs, 1)

		msg := w.msgs[0]
		assert.Equal(t, "9", string(msg.Key))
		assert.Equal(t, "event", msg.Headers[0].Key)
		assert.Equal(t, order.EventOrderStatusChanged, string(msg.Headers[0].Value))

		var body map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &body))
		assert.Equal(t, order.EventOrderStatusChanged, body["event"])
		assert.Equal(t, "done", body["data"].(map[string]any)["status"])
	})

	t.Run("PropagatesWriterError", func(t *testing.T) {
		p := NewKafkaPublisher(&fakeWriter{err: errors.New("no brokers")})
		assert.Error(t, p.Publish(context.Background(), statusEvent()))
	})

	t.Run("Close", func(t *testing.T) {
		w := &fakeWriter{}
		require.NoError(t, NewKafkaPublisher(w).Close())
		assert.True(t, w.closed)
	})
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, ParseBrokers(""))
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter("localhost:9092", "orders.events")
	assert.Equal(t, "orders.events", w.Topic)
	assert.True(t, w.Async)
}

func TestRedisPublisher(t *testing.T) {
	t.Run("Publishes", func(t *testing.T) {
		client := &fakeRedis{}
		p := NewRedisPublisher(client, "orders")

		require.NoError(t, p.Publish(context.Background(), statusEvent()))
		assert.Equal(t, "orders", client.channel)
		assert.Contains(t, string(client.payload), `"event":"orderStatusChanged"`)
	})

	t.Run("Error", func(t *testing.T) {
		p := NewRedisPublisher(&fakeRedis{err: errors.New("connection refused")}, "orders")
		assert.Error(t, p.Publish(context.Background(), statusEvent()))
	})
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	evt := statusEvent()

	failing := new(MockPublisher)
	failing.On("Publish", ctx, evt).Return(errors.New("down"))
	ok := new(MockPublisher)
	ok.On("Publish", ctx, evt).Return(nil)

	err := Multi{failing, ok}.Publish(ctx, evt)

	assert.NoError(t, err)
	failing.AssertExpectations(t)
	ok.AssertExpectations(t)
}
