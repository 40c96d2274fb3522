package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var currencyJunk = regexp.MustCompile(`[^\d.,-]`)

// Round2 rounds a currency or percentage value to 2 decimal places.
// Non-finite inputs collapse to 0 so a bad ratio never propagates.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// SafeRatio returns num/den, or 0 when the denominator is zero.
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Pct returns num/den as a percentage rounded to 2 decimals (0 when den is 0).
func Pct(num, den float64) float64 {
	return Round2(SafeRatio(num, den) * 100)
}

// ParseBRL parses a currency cell into a non-negative float64. It accepts
// both Brazilian notation ("1.234,56") and plain decimal ("1234.56"),
// tolerates a leading "R$" and stray characters, and returns 0 for anything
// unparseable. The absolute value is returned: the export reports deductions
// as negative amounts, but the audit works with magnitudes.
func ParseBRL(raw string) float64 {
	s := currencyJunk.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" || s == "-" {
		return 0
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		// Brazilian notation: dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return math.Abs(v)
}

// FormatBRL formats an amount as a string like "R$ 1.234,56".
// Uses dot as thousands separator and comma as decimal separator.
func FormatBRL(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	cents := int64(math.Round(Round2(amount) * 100))
	intPart := strconv.FormatInt(cents/100, 10)
	fracPart := cents % 100

	var b strings.Builder
	b.Grow(len(intPart) + len(intPart)/3 + 8)
	if neg {
		b.WriteString("-R$ ")
	} else {
		b.WriteString("R$ ")
	}

	// Insert separators from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}

	b.WriteByte(',')
	if fracPart < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(fracPart, 10))

	return b.String()
}
