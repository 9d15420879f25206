package core

// convert.go holds the only coercion points between loosely typed import
// rows and the normalized product payload.
//
// These functions handle the messy reality of spreadsheet data:
//   - Currency symbols and thousand separators in prices
//   - Accounting format for negatives "(12.00)"
//   - Mixed case and spacing in stock statuses ("low stock")
//   - Excel formula prefixes (="value") and stray quotes in CSV cells

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// thousandsRegex matches a number whose commas are well-formed thousands
// separators. Any other comma ("1,5", ",5", "1,2,3") is not a number.
var thousandsRegex = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// whitespaceRun matches the separators collapsed to "_" in stock statuses.
var whitespaceRun = regexp.MustCompile(`\s+`)

var (
	errPriceMissing  = errors.New("price is missing")
	errPriceNotNum   = errors.New("price is not a number")
	errPriceNegative = errors.New("price is negative")
)

// ParsePrice coerces a price to a finite, non-negative float.
// Strings are cleaned of currency symbols and thousands separators first.
// Zero is valid.
func ParsePrice(s Scalar) (float64, error) {
	var v float64
	switch s.Kind() {
	case KindNumber:
		v = s.num
	case KindString:
		n, err := parseNumeric(s.str)
		if err != nil {
			return 0, err
		}
		v = n
	case KindAbsent, KindNull:
		return 0, errPriceMissing
	default:
		return 0, errPriceNotNum
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errPriceNotNum
	}
	if v < 0 {
		return 0, errPriceNegative
	}
	// "(0)" and "-0" parse to negative zero.
	if v == 0 {
		v = 0
	}
	return v, nil
}

// parseNumeric handles currency symbols, thousands separators, and
// accounting format (parentheses for negative).
func parseNumeric(s string) (float64, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, errPriceMissing
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		if !thousandsRegex.MatchString(s) {
			return 0, errPriceNotNum
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, errPriceNotNum
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errPriceNotNum
	}
	return v, nil
}

// ParseHidePrice coerces the hide-price flag.
// A string is true iff it equals "true" (any case) or "1"; a number is true
// iff non-zero; absent and null are false.
func ParseHidePrice(s Scalar) bool {
	switch s.Kind() {
	case KindBool:
		return s.b
	case KindNumber:
		return s.num != 0
	case KindString:
		v := strings.TrimSpace(s.str)
		return strings.EqualFold(v, "true") || v == "1"
	default:
		return false
	}
}

// NormalizeStockStatus trims, upper-cases and joins words with "_".
// It does not check the vocabulary; empty input yields "".
func NormalizeStockStatus(s string) StockStatus {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return StockStatus(whitespaceRun.ReplaceAllString(strings.ToUpper(s), "_"))
}

// SplitFeatures splits a feature list on commas or newlines.
// Items are trimmed, empties dropped, order kept. Never returns nil.
func SplitFeatures(s string) []string {
	return splitList(s, func(r rune) bool { return r == ',' || r == '\n' })
}

// SplitImages splits a comma-separated list of image URLs. Never returns nil.
func SplitImages(s string) []string {
	return splitList(s, func(r rune) bool { return r == ',' })
}

func splitList(s string, sep func(rune) bool) []string {
	out := []string{}
	for _, part := range strings.FieldsFunc(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
// - Strips a UTF-8 byte order mark
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
