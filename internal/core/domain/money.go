package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrIncompatibleCommodity is returned when arithmetic or comparison is
// attempted between Money values of different commodities. It is a
// programming error on the caller's side and is never silently coerced.
var ErrIncompatibleCommodity = errors.New("incompatible commodities")

// Money is an exact monetary value in a single commodity. The amount is
// always held at the commodity's fraction precision unless constructed with
// NewMoneyRaw. Money is immutable; every operation returns a new value.
type Money struct {
	amount    decimal.Decimal
	commodity Commodity
}

// NewMoney creates a Money value, rounding the amount to the commodity's
// smallest fraction with banker's rounding (round half to even).
func NewMoney(amount decimal.Decimal, commodity Commodity) Money {
	return Money{
		amount:    amount.RoundBank(commodity.FractionDigits()),
		commodity: commodity,
	}
}

// NewMoneyRaw creates a Money value keeping the amount's own precision
// instead of re-rounding to the commodity's smallest fraction.
func NewMoneyRaw(amount decimal.Decimal, commodity Commodity) Money {
	return Money{amount: amount, commodity: commodity}
}

// NewMoneyFromNumerator creates a Money value from a raw numerator over the
// commodity's smallest fraction, e.g. 1234 over USD/100 is 12.34 USD.
func NewMoneyFromNumerator(numerator int64, commodity Commodity) Money {
	amount := decimal.NewFromInt(numerator).
		DivRound(decimal.NewFromInt(commodity.SmallestFraction), commodity.FractionDigits()+4)
	return NewMoney(amount, commodity)
}

// ZeroMoney returns the zero value for a commodity.
func ZeroMoney(commodity Commodity) Money {
	return Money{amount: decimal.Zero, commodity: commodity}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Commodity returns the commodity of this value.
func (m Money) Commodity() Commodity { return m.commodity }

// Numerator returns the amount expressed as an integer count of the
// commodity's smallest fraction units.
func (m Money) Numerator() int64 {
	return m.amount.Shift(m.commodity.FractionDigits()).IntPart()
}

// Denominator returns the commodity's smallest fraction.
func (m Money) Denominator() int64 { return m.commodity.SmallestFraction }

func (m Money) checkCommodity(other Money) error {
	if !m.commodity.Equal(other.commodity) {
		return fmt.Errorf("%w: %s vs %s", ErrIncompatibleCommodity, m.commodity, other.commodity)
	}
	return nil
}

// Add returns m + other. Both values must share the same commodity.
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCommodity(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), commodity: m.commodity}, nil
}

// Subtract returns m - other. Both values must share the same commodity.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.checkCommodity(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), commodity: m.commodity}, nil
}

// Multiply returns m * other re-rounded to the commodity's smallest fraction.
func (m Money) Multiply(other Money) (Money, error) {
	if err := m.checkCommodity(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount.Mul(other.amount), m.commodity), nil
}

// MultiplyInt returns m * factor re-rounded to the commodity's smallest fraction.
func (m Money) MultiplyInt(factor int64) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(factor)), m.commodity)
}

// Divide returns m / other re-rounded to the commodity's smallest fraction.
func (m Money) Divide(other Money) (Money, error) {
	if err := m.checkCommodity(other); err != nil {
		return Money{}, err
	}
	if other.amount.IsZero() {
		return Money{}, fmt.Errorf("division of %s by zero", m)
	}
	quotient := m.amount.DivRound(other.amount, m.commodity.FractionDigits()+4)
	return NewMoney(quotient, m.commodity), nil
}

// DivideInt returns m / divisor re-rounded to the commodity's smallest fraction.
func (m Money) DivideInt(divisor int64) (Money, error) {
	if divisor == 0 {
		return Money{}, fmt.Errorf("division of %s by zero", m)
	}
	quotient := m.amount.DivRound(decimal.NewFromInt(divisor), m.commodity.FractionDigits()+4)
	return NewMoney(quotient, m.commodity), nil
}

// Negate returns the value with its sign flipped, same commodity.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), commodity: m.commodity}
}

// Abs returns the absolute value, same commodity.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), commodity: m.commodity}
}

// Compare returns -1, 0 or 1 comparing m against other.
// Values of different commodities cannot be ordered.
func (m Money) Compare(other Money) (int, error) {
	if err := m.checkCommodity(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal reports whether two Money values have the same commodity and amount.
func (m Money) Equal(other Money) bool {
	return m.commodity.Equal(other.commodity) && m.amount.Equal(other.amount)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// ToPlainString renders the amount with exactly the commodity's number of
// fraction digits and no grouping, e.g. "1234.50" for USD.
func (m Money) ToPlainString() string {
	return m.amount.StringFixedBank(m.commodity.FractionDigits())
}

// ToLocaleString renders the amount with thousands grouping and the
// commodity mnemonic appended, e.g. "1,234.50 USD".
func (m Money) ToLocaleString() string {
	plain := m.amount.Abs().StringFixedBank(m.commodity.FractionDigits())
	intPart, fracPart, hasFrac := strings.Cut(plain, ".")

	var b strings.Builder
	if m.amount.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	b.WriteByte(' ')
	b.WriteString(m.commodity.Mnemonic)
	return b.String()
}

func (m Money) String() string {
	return m.ToPlainString() + " " + m.commodity.Mnemonic
}
