package order

import (
	"context"
	"fmt"
	"strings"
)

// insertCartItems writes every item for orderID as one multi-row INSERT, so
// the batch either lands whole or not at all. line_no keeps the cart order.
func insertCartItems(ctx context.Context, q Querier, orderID int64, items []CartItem) error {
	if len(items) == 0 {
		return fmt.Errorf("no cart items for order %d", orderID)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO order_cart (order_id, line_no, product_id, quantity, price) VALUES ")

	args := make([]any, 0, len(items)*5)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, orderID, i+1, item.ProductID, item.Quantity, item.Price)
	}

	res, err := q.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != int64(len(items)) {
		return fmt.Errorf("inserted %d of %d cart items", affected, len(items))
	}
	return nil
}
