package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ExportFilename is the download name of the product export.
const ExportFilename = "products.csv"

// ExportHeaders are the column titles of a product export.
var ExportHeaders = []string{
	"SKU", "Name", "Description", "Price", "Category",
	"Stock Status", "Hide Price", "Features", "Image URLs", "Created At",
}

// isoMillis matches JavaScript's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// WriteProductsCSV writes products as a human-readable CSV export.
func WriteProductsCSV(w io.Writer, products []Product) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportHeaders); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, p := range products {
		hide := "No"
		if p.HidePrice {
			hide = "Yes"
		}
		record := []string{
			p.SKU,
			p.Name,
			p.Description,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			p.CategoryName,
			strings.ReplaceAll(string(p.StockStatus), "_", " "),
			hide,
			strings.Join(p.Features, "; "),
			strings.Join(p.Images, "; "),
			p.CreatedAt.UTC().Format(isoMillis),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write export row %s: %w", p.SKU, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
