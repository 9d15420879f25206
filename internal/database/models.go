package database

import "time"

type Category struct {
	ID   string
	Name string
}

// Product is a products row joined with its category name and the ordered
// feature and image lists from the child tables.
type Product struct {
	ID           string
	Sku          string
	Name         string
	Description  string
	Price        float64
	HidePrice    bool
	StockStatus  string
	CategoryID   string
	CategoryName string
	Features     []string
	Images       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
