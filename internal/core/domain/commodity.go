package domain

import "fmt"

const (
	// CommodityNamespaceISO4217 marks a commodity identifier as a real ISO-4217 currency code.
	CommodityNamespaceISO4217 = "ISO4217"

	// NoCurrencyCode is the sentinel mnemonic used for commodities whose
	// namespace is not ISO4217 (securities, retired codes, unknown spaces).
	NoCurrencyCode = "XXX"
)

// Commodity identifies a currency or security and fixes its smallest
// representable unit. Every Money value of a commodity is expressed over
// the commodity's smallest fraction.
type Commodity struct {
	Namespace        string `json:"namespace"`
	Mnemonic         string `json:"mnemonic"`
	Name             string `json:"name"`
	SmallestFraction int64  `json:"smallestFraction"`
}

// NewCommodity creates a Commodity, rejecting non-positive denominators.
func NewCommodity(namespace, mnemonic string, smallestFraction int64) (Commodity, error) {
	if smallestFraction <= 0 {
		return Commodity{}, fmt.Errorf("smallest fraction must be positive, got %d for %s", smallestFraction, mnemonic)
	}
	return Commodity{
		Namespace:        namespace,
		Mnemonic:         mnemonic,
		SmallestFraction: smallestFraction,
	}, nil
}

// NoCurrency returns the sentinel commodity used when an imported commodity
// is not an ISO-4217 currency.
func NoCurrency() Commodity {
	return Commodity{
		Namespace:        CommodityNamespaceISO4217,
		Mnemonic:         NoCurrencyCode,
		Name:             "No currency",
		SmallestFraction: 1000000,
	}
}

// IsCurrency reports whether the commodity is a real ISO-4217 currency.
func (c Commodity) IsCurrency() bool {
	return c.Namespace == CommodityNamespaceISO4217 && c.Mnemonic != NoCurrencyCode
}

// Equal reports whether two commodities denote the same currency or security.
func (c Commodity) Equal(other Commodity) bool {
	return c.Namespace == other.Namespace && c.Mnemonic == other.Mnemonic
}

// FractionDigits returns the number of decimal fraction digits implied by the
// smallest fraction, e.g. 2 for a smallest fraction of 100.
func (c Commodity) FractionDigits() int32 {
	var digits int32
	for f := c.SmallestFraction; f > 1; f /= 10 {
		digits++
	}
	return digits
}

func (c Commodity) String() string {
	return c.Namespace + ":" + c.Mnemonic
}
