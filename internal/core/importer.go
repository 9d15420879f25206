package core

// importer.go reconciles a validated batch into per-row create or update
// writes against a ProductWriter.
//
// Rows are processed strictly in batch order, one write each. A failing row
// is recorded and the run moves on; nothing already written is undone.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Missing-category policies. See WithMissingCategoryPolicy.
const (
	MissingCategorySkip = "skip"
	MissingCategoryFail = "fail"
)

// Observer receives import events. The metrics package implements it.
type Observer interface {
	RowProcessed(outcome Outcome)
	BatchFinished(mode string, rows int, elapsed time.Duration, err error)
}

// Batch modes reported to Observer.BatchFinished.
const (
	ModeValidate = "validate"
	ModeCommit   = "commit"
)

type noopObserver struct{}

func (noopObserver) RowProcessed(Outcome) {}
func (noopObserver) BatchFinished(string, int, time.Duration, error) {}

// Importer applies import rows to a product store.
type Importer struct {
	store      ProductWriter
	categories map[string]Category
	products   map[string]Product
	policy     string
	logger     *slog.Logger
	observer   Observer
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithMissingCategoryPolicy sets what happens to a row whose category is not
// in the snapshot: MissingCategorySkip drops it and counts it as skipped,
// MissingCategoryFail records a row failure. Unknown values mean skip.
func WithMissingCategoryPolicy(policy string) ImporterOption {
	return func(imp *Importer) {
		if strings.EqualFold(policy, MissingCategoryFail) {
			imp.policy = MissingCategoryFail
		} else {
			imp.policy = MissingCategorySkip
		}
	}
}

// WithLogger sets the logger used for per-row diagnostics.
func WithLogger(logger *slog.Logger) ImporterOption {
	return func(imp *Importer) {
		if logger != nil {
			imp.logger = logger
		}
	}
}

// WithObserver registers an Observer for row outcomes.
func WithObserver(o Observer) ImporterOption {
	return func(imp *Importer) {
		if o != nil {
			imp.observer = o
		}
	}
}

// NewImporter creates an Importer that writes through store and resolves
// categories and existing SKUs against snap.
func NewImporter(store ProductWriter, snap Snapshot, opts ...ImporterOption) *Importer {
	imp := &Importer{
		store:      store,
		categories: make(map[string]Category, len(snap.Categories)),
		products:   make(map[string]Product, len(snap.Products)),
		policy:     MissingCategorySkip,
		logger:     slog.Default(),
		observer:   noopObserver{},
	}
	for _, c := range snap.Categories {
		key := categoryKey(c.Name)
		if _, ok := imp.categories[key]; !ok {
			imp.categories[key] = c
		}
	}
	for _, p := range snap.Products {
		imp.products[strings.TrimSpace(p.SKU)] = p
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// errCategoryGone marks a row whose category disappeared after validation.
var errCategoryGone = errors.New("category no longer exists")

// Run imports rows in order. updateExisting controls whether rows whose SKU
// is already stored overwrite the stored product or fail.
//
// Row failures never abort the run. The returned error is non-nil only when
// ctx ends mid-batch; the result then covers the rows processed so far.
func (imp *Importer) Run(ctx context.Context, rows []ImportRow, updateExisting bool) (ImportResult, error) {
	result := ImportResult{Errors: []RowError{}}

	for i, row := range rows {
		rowNum := i + 1
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import stopped before row %d: %w", rowNum, err)
		}

		outcome, err := imp.importRow(ctx, row, updateExisting)
		switch outcome {
		case OutcomeCreated:
			result.Created++
		case OutcomeUpdated:
			result.Updated++
		case OutcomeSkipped:
			result.Skipped++
			imp.logger.Warn("import row skipped", "row", rowNum, "sku", row.SKU, "category", row.Category)
		case OutcomeFailed:
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			imp.logger.Warn("import row failed", "row", rowNum, "sku", row.SKU, "error", err)
		}
		imp.observer.RowProcessed(outcome)
	}

	return result, nil
}

func (imp *Importer) importRow(ctx context.Context, row ImportRow, updateExisting bool) (Outcome, error) {
	category, ok := imp.categories[categoryKey(row.Category)]
	if !ok {
		if imp.policy == MissingCategoryFail {
			return OutcomeFailed, fmt.Errorf("category %q no longer exists", strings.TrimSpace(row.Category))
		}
		return OutcomeSkipped, errCategoryGone
	}

	sku := strings.TrimSpace(row.SKU)
	existing, exists := imp.products[sku]

	payload, err := BuildPayload(row, category.ID)
	if err != nil {
		return OutcomeFailed, err
	}

	if exists && !updateExisting {
		return OutcomeFailed, fmt.Errorf("SKU %s already exists (update mode disabled)", sku)
	}
	if exists {
		payload.ID = existing.ID
	}

	saved, err := imp.store.SaveProduct(ctx, payload)
	if err != nil {
		return OutcomeFailed, err
	}

	// Later rows in this run see the write.
	imp.products[sku] = saved

	if exists {
		return OutcomeUpdated, nil
	}
	return OutcomeCreated, nil
}

// BuildPayload normalizes a row into a create payload for categoryID.
// It rejects rows that could not have passed validation.
func BuildPayload(row ImportRow, categoryID string) (ProductPayload, error) {
	sku := strings.TrimSpace(row.SKU)
	if sku == "" {
		return ProductPayload{}, errors.New(msgSKURequired)
	}

	price, err := ParsePrice(row.Price)
	if err != nil {
		return ProductPayload{}, fmt.Errorf("invalid price %q: %w", row.Price.String(), err)
	}

	status := NormalizeStockStatus(row.StockStatus)
	if status == "" {
		status = StockInStock
	}
	if !status.Valid() {
		return ProductPayload{}, fmt.Errorf("invalid stock status %q", row.StockStatus)
	}

	return ProductPayload{
		Name:        strings.TrimSpace(row.Name),
		SKU:         sku,
		Price:       price,
		HidePrice:   ParseHidePrice(row.HidePrice),
		Description: strings.TrimSpace(row.Description),
		CategoryID:  categoryID,
		Features:    SplitFeatures(row.Features),
		Images:      SplitImages(row.Images),
		StockStatus: status,
	}, nil
}
