// Package core provides the business logic for bulk product imports.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"context"
	"time"
)

// StockStatus is the availability vocabulary of a product.
type StockStatus string

const (
	StockInStock    StockStatus = "IN_STOCK"
	StockLowStock   StockStatus = "LOW_STOCK"
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
	StockBackorder  StockStatus = "BACKORDER"
)

// ValidStockStatuses lists the accepted stock statuses in display order.
var ValidStockStatuses = []StockStatus{StockInStock, StockLowStock, StockOutOfStock, StockBackorder}

// Valid reports whether s is one of ValidStockStatuses.
func (s StockStatus) Valid() bool {
	for _, v := range ValidStockStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ImportRow is one untrusted candidate product as submitted by a client.
// Text fields arrive as strings; price and hidePrice may be any JSON primitive.
type ImportRow struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Price       Scalar `json:"price,omitzero"`
	HidePrice   Scalar `json:"hidePrice,omitzero"`
	Description string `json:"description"`
	Category    string `json:"category"`
	StockStatus string `json:"stockStatus,omitempty"`
	Features    string `json:"features,omitempty"`
	Images      string `json:"images,omitempty"`
}

// Category is a product category. Rows reference categories by name.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a stored product as seen by the import pipeline.
type Product struct {
	ID           string      `json:"id"`
	SKU          string      `json:"sku"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	HidePrice    bool        `json:"hidePrice"`
	StockStatus  StockStatus `json:"stockStatus"`
	CategoryID   string      `json:"categoryId"`
	CategoryName string      `json:"categoryName"`
	Features     []string    `json:"features"`
	Images       []string    `json:"images"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// ProductPayload is the normalized write payload built from an ImportRow.
// An empty ID means create; otherwise the product with that ID is replaced.
type ProductPayload struct {
	ID          string
	Name        string
	SKU         string
	Price       float64
	HidePrice   bool
	Description string
	CategoryID  string
	Features    []string
	Images      []string
	StockStatus StockStatus
}

// Snapshot is the reference data an import runs against, loaded once per run.
type Snapshot struct {
	Categories []Category
	Products   []Product
}

// ValidationError describes one problem with one row. Warnings use the same shape.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationResult is the outcome of validating a batch.
// Valid is true iff Errors is empty; Warnings never affect it.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// ImportSummary is the dry-run breakdown returned with a validate-only request.
type ImportSummary struct {
	TotalRows     int `json:"totalRows"`
	ToCreate      int `json:"toCreate"`
	ToUpdate      int `json:"toUpdate"`
	ErrorRows     int `json:"errorRows"`
	DuplicateRows int `json:"duplicateRows"`
}

// RowError records a row that failed during commit.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult aggregates per-row commit outcomes.
type ImportResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Failed  int        `json:"failed"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors"`
}

// Processed returns the number of rows that reached an outcome.
func (r ImportResult) Processed() int {
	return r.Created + r.Updated + r.Failed + r.Skipped
}

// Outcome is what happened to a single row during commit.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// CatalogReader loads the reference data for an import.
type CatalogReader interface {
	Categories(ctx context.Context) ([]Category, error)
	Products(ctx context.Context) ([]Product, error)
}

// ProductWriter persists one product. Each call is its own unit of work.
type ProductWriter interface {
	SaveProduct(ctx context.Context, p ProductPayload) (Product, error)
}

// Store is the full storage contract used by the Service.
type Store interface {
	CatalogReader
	ProductWriter
	Ping(ctx context.Context) error
}
