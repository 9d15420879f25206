package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ProductColumns are the import file columns in template order.
var ProductColumns = []string{
	"name", "sku", "price", "hidePrice", "description",
	"category", "stockStatus", "features", "images",
}

// requiredColumns must be present in the header row.
var requiredColumns = []string{"name", "sku", "price", "description", "category"}

// ErrEmptyFile is returned for uploads with no header row.
var ErrEmptyFile = errors.New("empty file")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads an import file into rows.
//
// The first non-empty line is the header; columns are matched
// case-insensitively and may appear in any order. Data lines whose name cell
// is empty or starts with "#" (template instructions) are dropped.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(sanitizeUTF8(data), utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	records, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	headerPos := -1
	for i, rec := range records {
		if !isEmptyRow(rec) {
			headerPos = i
			break
		}
	}
	if headerPos < 0 {
		return nil, ErrEmptyFile
	}

	idx := MakeHeaderIndex(records[headerPos])
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	rows := []ImportRow{}
	for _, rec := range records[headerPos+1:] {
		if isEmptyRow(rec) {
			continue
		}
		row := rowFromRecord(rec, idx)
		name := strings.TrimSpace(row.Name)
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowFromRecord(rec []string, idx HeaderIndex) ImportRow {
	cell := func(col string) string {
		pos, ok := idx[strings.ToLower(col)]
		if !ok || pos >= len(rec) {
			return ""
		}
		return rec[pos]
	}

	row := ImportRow{
		Name:        cell("name"),
		SKU:         cell("sku"),
		Price:       StringScalar(cell("price")),
		Description: cell("description"),
		Category:    cell("category"),
		StockStatus: cell("stockStatus"),
		Features:    cell("features"),
		Images:      cell("images"),
	}
	if v := cell("hidePrice"); strings.TrimSpace(v) != "" {
		row.HidePrice = StringScalar(v)
	}
	return row
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
