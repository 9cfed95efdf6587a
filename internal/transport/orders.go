package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ordermgmt-be/internal/order"
	"ordermgmt-be/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// flexibleID accepts a user id sent either as a JSON string or a number.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("userid must be a string or number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

// cartItemRequest takes the quantity from either "quantity" or the legacy
// "count" field.
type cartItemRequest struct {
	ProductID int64            `json:"product_id"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Count     *decimal.Decimal `json:"count"`
	Price     decimal.Decimal  `json:"price"`
}

type createOrderRequest struct {
	CartItems []cartItemRequest `json:"cartItems"`
	UserID    flexibleID        `json:"userid"`
}

func (r createOrderRequest) items() []order.CartItem {
	items := make([]order.CartItem, 0, len(r.CartItems))
	for _, ci := range r.CartItems {
		qty := decimal.Zero
		switch {
		case ci.Quantity != nil:
			qty = *ci.Quantity
		case ci.Count != nil:
			qty = *ci.Count
		}
		items = append(items, order.CartItem{
			ProductID: ci.ProductID,
			Quantity:  qty,
			Price:     ci.Price,
		})
	}
	return items
}

type createOrderResponse struct {
	envelope
	*order.Receipt
}

// transitionResponse spells its fields out because "status" is taken by the
// envelope.
type transitionResponse struct {
	envelope
	OrderID     int64        `json:"order_id"`
	OrderNo     int64        `json:"order_no"`
	OrderStatus order.Status `json:"order_status"`
}

// CreateOrder handles POST /api/orders/createorder.
func (s *Server) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	receipt, err := s.orders.CreateOrder(c.Request().Context(), req.items(), string(req.UserID))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, createOrderResponse{
		envelope: success("Order created successfully"),
		Receipt:  receipt,
	})
}

// GetPendingOrders handles GET /api/orders/pendingorders.
func (s *Server) GetPendingOrders(c echo.Context) error {
	orders, err := s.orders.ListPending(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetDoneOrders handles GET /api/orders/doneorders.
func (s *Server) GetDoneOrders(c echo.Context) error {
	orders, err := s.orders.ListDone(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// MarkDone handles PUT /api/orders/:orderId/done.
func (s *Server) MarkDone(c echo.Context) error {
	return s.transition(c, s.orders.MarkDone, "Order marked as done successfully")
}

// MarkClosed handles PUT /api/orders/:orderId/close.
func (s *Server) MarkClosed(c echo.Context) error {
	return s.transition(c, s.orders.MarkCompleted, "Order Closed Successfully")
}

type transitionFunc func(ctx context.Context, orderID int64) (*order.TransitionResult, error)

func (s *Server) transition(c echo.Context, fn transitionFunc, message string) error {
	orderID, err := utils.ToInt64(c.Param("orderId"))
	if err != nil {
		return badRequest(c, "Invalid order id")
	}

	result, err := fn(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, transitionResponse{
		envelope:    success(message),
		OrderID:     result.OrderID,
		OrderNo:     result.OrderNo,
		OrderStatus: result.Status,
	})
}
