package core

// validation.go checks an import batch against the current catalog without
// touching storage.
//
// Validation happens at two levels:
//  1. Row validation: required fields, category lookup, price, stock status
//  2. Batch validation: duplicate SKUs in the batch, SKUs already stored
//
// Errors block a commit. Warnings are informational only.

import (
	"fmt"
	"strings"
)

// Validation messages. Clients match on these, keep them stable.
const (
	msgNameRequired        = "Product name is required"
	msgSKURequired         = "SKU is required"
	msgDescriptionRequired = "Description is required"
	msgCategoryRequired    = "Category is required"
	msgPriceInvalid        = "Price must be a valid positive number"
	msgDuplicateSKU        = "Duplicate SKU %q found in import file"
)

// Validator validates import rows against a fixed set of categories and
// existing products. It is safe for concurrent use once built.
type Validator struct {
	categories    map[string]Category
	categoryNames string
	existingSKUs  map[string]struct{}
}

// NewValidator builds a Validator over the given reference data.
func NewValidator(categories []Category, existing []Product) *Validator {
	v := &Validator{
		categories:   make(map[string]Category, len(categories)),
		existingSKUs: make(map[string]struct{}, len(existing)),
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
		key := categoryKey(c.Name)
		if _, ok := v.categories[key]; !ok {
			v.categories[key] = c
		}
	}
	v.categoryNames = strings.Join(names, ", ")

	for _, p := range existing {
		v.existingSKUs[strings.TrimSpace(p.SKU)] = struct{}{}
	}
	return v
}

// categoryKey is the lookup key for case-insensitive category matching.
func categoryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateRow returns the field errors of a single row. rowNum is 1-based.
func (v *Validator) ValidateRow(row ImportRow, rowNum int) []ValidationError {
	var errs []ValidationError
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Row: rowNum, Field: field, Message: msg})
	}

	if strings.TrimSpace(row.Name) == "" {
		add("name", msgNameRequired)
	}
	if strings.TrimSpace(row.SKU) == "" {
		add("sku", msgSKURequired)
	}
	if strings.TrimSpace(row.Description) == "" {
		add("description", msgDescriptionRequired)
	}

	if category := strings.TrimSpace(row.Category); category == "" {
		add("category", msgCategoryRequired)
	} else if _, ok := v.categories[categoryKey(category)]; !ok {
		add("category", fmt.Sprintf("Category %q does not exist. Available: %s", category, v.categoryNames))
	}

	if _, err := ParsePrice(row.Price); err != nil {
		add("price", msgPriceInvalid)
	}

	if status := NormalizeStockStatus(row.StockStatus); status != "" && !status.Valid() {
		add("stockStatus", "Invalid stock status. Must be one of: "+joinStatuses())
	}

	return errs
}

// ValidateAll validates every row and then checks SKUs across the batch.
// Output is deterministic: errors and warnings follow row order.
func (v *Validator) ValidateAll(rows []ImportRow) ValidationResult {
	result := ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		rowNum := i + 1
		result.Errors = append(result.Errors, v.ValidateRow(row, rowNum)...)

		sku := strings.TrimSpace(row.SKU)
		if sku == "" {
			continue
		}

		if _, dup := seen[sku]; dup {
			result.Errors = append(result.Errors, ValidationError{
				Row:     rowNum,
				Field:   "sku",
				Message: fmt.Sprintf(msgDuplicateSKU, sku),
			})
			continue
		}
		seen[sku] = struct{}{}

		if _, exists := v.existingSKUs[sku]; exists {
			result.Warnings = append(result.Warnings, ValidationError{
				Row:     rowNum,
				Field:   "sku",
				Message: fmt.Sprintf("SKU %q already exists and will be updated", sku),
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// Summarize breaks a validated batch down into what a commit would do.
// Rows with any error count once in ErrorRows and never as create/update.
func (v *Validator) Summarize(rows []ImportRow, result ValidationResult) ImportSummary {
	summary := ImportSummary{TotalRows: len(rows)}

	errorRows := make(map[int]struct{})
	for _, e := range result.Errors {
		errorRows[e.Row] = struct{}{}
	}
	summary.ErrorRows = len(errorRows)

	// Duplicates are recounted from the SKUs, the same way ValidateAll finds them.
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		sku := strings.TrimSpace(row.SKU)
		if sku == "" {
			continue
		}
		if _, dup := seen[sku]; dup {
			summary.DuplicateRows++
			continue
		}
		seen[sku] = struct{}{}
	}

	for i, row := range rows {
		if _, bad := errorRows[i+1]; bad {
			continue
		}
		if _, exists := v.existingSKUs[strings.TrimSpace(row.SKU)]; exists {
			summary.ToUpdate++
		} else {
			summary.ToCreate++
		}
	}
	return summary
}

func joinStatuses() string {
	parts := make([]string, len(ValidStockStatuses))
	for i, s := range ValidStockStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
