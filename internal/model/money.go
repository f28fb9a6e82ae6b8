package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatGBP renders an amount as pounds with thousands separators, e.g. £1,250.50.
// Whole amounts drop the pence.
func FormatGBP(d decimal.Decimal) string {
	neg := d.IsNegative()
	d = d.Abs()

	s := d.StringFixed(2)
	if d.Equal(d.Truncate(0)) {
		s = d.StringFixed(0)
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("£")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// ParseGBP parses an amount written as 1500000, 1,500,000 or £1,500,000.50.
func ParseGBP(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("£", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	clean = strings.TrimPrefix(strings.ToUpper(clean), "GBP")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q is negative", s)
	}
	return d, nil
}
