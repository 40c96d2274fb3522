package utils

import (
	"regexp"
	"strings"
)

var (
	nonSKUChars   = regexp.MustCompile(`[^\d-]`)
	nonDigitChars = regexp.MustCompile(`\D`)
	skuSeparators = regexp.MustCompile(`[-/+,; ]+`)
)

// CleanSKU reduces a raw SKU cell to its canonical form: digits and hyphens
// only. Hyphenless values lose leading zeros (a lone "0" is preserved);
// hyphenated values are composite/bundle identifiers and kept verbatim.
func CleanSKU(raw string) string {
	s := nonSKUChars.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "-") {
		return StripLeadingZeros(s)
	}
	return s
}

// CleanOrderID strips everything except digits from an order number cell.
func CleanOrderID(raw string) string {
	return nonDigitChars.ReplaceAllString(raw, "")
}

// SplitSKU splits a composite SKU into its constituent parts. The cost sheet
// historically used several separators interchangeably.
func SplitSKU(sku string) []string {
	var parts []string
	for _, p := range skuSeparators.Split(sku, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// StripLeadingZeros removes leading zeros but preserves a lone "0".
func StripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}
