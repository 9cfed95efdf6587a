package order

import (
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for order_date values and for
// scoping order numbers.
const DateLayout = "2006-01-02"

type CartItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is an order header with its line items, as returned by listings.
type Order struct {
	ID        int64           `json:"order_id"`
	OrderNo   int64           `json:"order_no"`
	UserID    string          `json:"userid"`
	OrderDate string          `json:"order_date"`
	Total     decimal.Decimal `json:"order_total"`
	Status    Status          `json:"status,omitempty"`
	Items     []LineItem      `json:"cartItems"`
}

type LineItem struct {
	ProductID   int64           `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ProductName string          `json:"product_name"`
}

// Receipt is what a successful CreateOrder hands back to the caller.
type Receipt struct {
	OrderID   int64           `json:"order_id"`
	OrderNo   int64           `json:"order_no"`
	OrderDate string          `json:"order_date"`
	Total     decimal.Decimal `json:"order_total"`
}

type TransitionResult struct {
	OrderID int64  `json:"order_id"`
	OrderNo int64  `json:"order_no"`
	Status  Status `json:"status"`
}

// Row is one joined (order header × line item × product name) record.
type Row struct {
	OrderID     int64
	OrderNo     int64
	UserID      string
	OrderDate   string
	Total       decimal.Decimal
	ProductID   int64
	ProductName string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
}

// CalculateTotal sums price × quantity exactly and rounds half away from zero
// to two decimal places.
func CalculateTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(item.Quantity))
	}
	return total.Round(2)
}
