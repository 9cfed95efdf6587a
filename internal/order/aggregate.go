package order

// GroupRows nests joined rows into orders. Rows are grouped by order id, not by
// adjacency; orders come out in first-seen order and each order keeps its items
// in input order.
func GroupRows(rows []Row) []*Order {
	orders := make([]*Order, 0)
	byID := make(map[int64]*Order, len(rows))

	for _, r := range rows {
		o, ok := byID[r.OrderID]
		if !ok {
			o = &Order{
				ID:        r.OrderID,
				OrderNo:   r.OrderNo,
				UserID:    r.UserID,
				OrderDate: r.OrderDate,
				Total:     r.Total,
				Items:     make([]LineItem, 0, 1),
			}
			byID[r.OrderID] = o
			orders = append(orders, o)
		}
		o.Items = append(o.Items, LineItem{
			ProductID:   r.ProductID,
			Quantity:    r.Quantity,
			Price:       r.Price,
			ProductName: r.ProductName,
		})
	}

	return orders
}
