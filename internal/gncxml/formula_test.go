package gncxml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncbooks/gncledger/internal/gncxml"
)

func TestFormulaFormat_ParseLegacy(t *testing.T) {
	f := gncxml.LegacyFormulaFormat

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"comma decimal", "12,50", "12.5"},
		{"dot grouping with comma decimal", "1.234,56", "1234.56"},
		{"integer", "500", "500"},
		{"spaces are cosmetic", "1 234,56", "1234.56"},
		{"negative", "-42,00", "-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestFormulaFormat_ParseDotDecimal(t *testing.T) {
	f := gncxml.FormulaFormat{DecimalSep: '.', GroupSep: ','}

	d, err := f.Parse("1,234.56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.String())
}

func TestFormulaFormat_ParseErrors(t *testing.T) {
	f := gncxml.LegacyFormulaFormat

	for _, input := range []string{"", "   ", "abc", "12,,5"} {
		_, err := f.Parse(input)
		assert.Error(t, err, "input %q should not parse", input)
	}
}
