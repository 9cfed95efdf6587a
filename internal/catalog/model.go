package catalog

import "github.com/shopspring/decimal"

type Category struct {
	ID     int64  `json:"category_id"`
	Name   string `json:"category_name"`
	Status string `json:"status"`
}

type Product struct {
	ID           int64           `json:"product_id"`
	Name         string          `json:"product_name"`
	ImageURL     *string         `json:"image_url"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	CategoryName string          `json:"category_name"`
}
