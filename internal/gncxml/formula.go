package gncxml

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormulaFormat is the explicit locale configuration for template split
// formulas. Old export files wrote formulas with the exporting device's
// locale; for backward compatibility the default is the comma-decimal
// format those files used.
type FormulaFormat struct {
	DecimalSep rune
	GroupSep   rune
}

// LegacyFormulaFormat matches the number format of the retired exporter.
var LegacyFormulaFormat = FormulaFormat{DecimalSep: ',', GroupSep: '.'}

// Parse evaluates a formula string into an exact decimal amount.
func (f FormulaFormat) Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty formula")
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case f.GroupSep, ' ':
			// grouping is cosmetic
		case f.DecimalSep:
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid formula %q: %w", s, err)
	}
	return d, nil
}
