package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	SequenceCounter = "counter"
	SequenceMax     = "max"
)

// Querier is the subset of *sql.Tx the order statements need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Allocator hands out the next per-day order number inside an open transaction.
type Allocator interface {
	Next(ctx context.Context, q Querier, day string) (int64, error)
}

// NewAllocator returns the allocator registered under name.
func NewAllocator(name string) (Allocator, error) {
	switch name {
	case "", SequenceCounter:
		return CounterAllocator{}, nil
	case SequenceMax:
		return MaxAllocator{}, nil
	}
	return nil, fmt.Errorf("unknown sequence strategy %q", name)
}

// CounterAllocator keeps one row per day in order_sequence and bumps it with an
// upsert. The row lock serialises concurrent creators, and a rolled back order
// also rolls back its increment. A missing row is seeded from the highest
// order_no already stored for that day.
type CounterAllocator struct{}

const nextCounterQuery = `
	INSERT INTO order_sequence (order_date, last_no)
	VALUES ($1, (SELECT COALESCE(MAX(order_no), 0) + 1 FROM order_master WHERE order_date = $1))
	ON CONFLICT (order_date) DO UPDATE SET last_no = order_sequence.last_no + 1
	RETURNING last_no
`

func (CounterAllocator) Next(ctx context.Context, q Querier, day string) (int64, error) {
	var next int64
	if err := q.QueryRowContext(ctx, nextCounterQuery, day).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// MaxAllocator reads the day's highest order_no and adds one. Two concurrent
// creators can read the same value; the unique (order_date, order_no) index
// rejects the loser, which the service retries.
type MaxAllocator struct{}

const latestOrderNoQuery = `
	SELECT order_no FROM order_master
	WHERE order_date = $1
	ORDER BY order_no DESC
	LIMIT 1
`

func (MaxAllocator) Next(ctx context.Context, q Querier, day string) (int64, error) {
	var latest int64
	err := q.QueryRowContext(ctx, latestOrderNoQuery, day).Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return latest + 1, nil
}
