package order

import (
	"context"
	"strconv"
	"time"
)

const (
	EventNewOrder           = "newOrder"
	EventOrderStatusChanged = "orderStatusChanged"
)

// Event is broadcast after a successful commit. Delivery is best effort.
type Event struct {
	Name    string    `json:"event"`
	Key     string    `json:"-"`
	At      time.Time `json:"at"`
	Payload any       `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type StatusChange struct {
	OrderID int64  `json:"order_id"`
	OrderNo int64  `json:"order_no"`
	Status  Status `json:"status"`
}

func NewOrderEvent(r *Receipt, at time.Time) Event {
	return Event{
		Name:    EventNewOrder,
		Key:     strconv.FormatInt(r.OrderID, 10),
		At:      at,
		Payload: r,
	}
}

func StatusChangedEvent(t *TransitionResult, at time.Time) Event {
	return Event{
		Name: EventOrderStatusChanged,
		Key:  strconv.FormatInt(t.OrderID, 10),
		At:   at,
		Payload: StatusChange{
			OrderID: t.OrderID,
			OrderNo: t.OrderNo,
			Status:  t.Status,
		},
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
