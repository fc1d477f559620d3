// Package commodities provides the ISO-4217 currency table consulted during
// import for smallest-fraction denominators.
package commodities

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

//go:embed iso4217.yaml
var iso4217YAML []byte

type currencyEntry struct {
	Code             string `yaml:"code"`
	Name             string `yaml:"name"`
	SmallestFraction int64  `yaml:"smallest_fraction"`
}

type tableFile struct {
	Currencies []currencyEntry `yaml:"currencies"`
}

// Table maps ISO-4217 currency codes to commodity definitions.
type Table struct {
	byCode map[string]domain.Commodity
}

// Load parses a yaml currency table.
func Load(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse currency table: %w", err)
	}
	t := &Table{byCode: make(map[string]domain.Commodity, len(file.Currencies))}
	for _, e := range file.Currencies {
		c, err := domain.NewCommodity(domain.CommodityNamespaceISO4217, e.Code, e.SmallestFraction)
		if err != nil {
			return nil, err
		}
		c.Name = e.Name
		t.byCode[e.Code] = c
	}
	return t, nil
}

var (
	defaultTable *Table
	defaultOnce  sync.Once
)

// Default returns the embedded ISO-4217 table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(iso4217YAML)
		if err != nil {
			// The embedded table is part of the build; failing to parse
			// it is unrecoverable.
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// ByCurrencyCode looks up a currency code.
func (t *Table) ByCurrencyCode(code string) (domain.Commodity, bool) {
	c, ok := t.byCode[code]
	return c, ok
}

// All returns every known commodity.
func (t *Table) All() []domain.Commodity {
	out := make([]domain.Commodity, 0, len(t.byCode))
	for _, c := range t.byCode {
		out = append(out, c)
	}
	return out
}
