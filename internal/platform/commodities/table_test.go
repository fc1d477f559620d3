package commodities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncbooks/gncledger/internal/core/domain"
	"github.com/gncbooks/gncledger/internal/platform/commodities"
)

func TestDefaultTable(t *testing.T) {
	table := commodities.Default()

	usd, ok := table.ByCurrencyCode("USD")
	require.True(t, ok)
	assert.Equal(t, domain.CommodityNamespaceISO4217, usd.Namespace)
	assert.Equal(t, int64(100), usd.SmallestFraction)

	jpy, ok := table.ByCurrencyCode("JPY")
	require.True(t, ok)
	assert.Equal(t, int64(1), jpy.SmallestFraction)

	_, ok = table.ByCurrencyCode("ZZZ")
	assert.False(t, ok)

	assert.NotEmpty(t, table.All())
}

func TestLoad_RejectsBadFraction(t *testing.T) {
	_, err := commodities.Load([]byte("currencies:\n  - code: BAD\n    name: Bad\n    smallest_fraction: 0\n"))
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	_, err := commodities.Load([]byte("currencies: ["))
	assert.Error(t, err)
}
