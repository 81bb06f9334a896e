package market

import (
	"database/sql/driver"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CentPlaces is the minor-unit precision used when money is displayed or
// persisted as a rounded figure.
const CentPlaces = 2

// Money is an exact decimal amount in the account currency.
type Money struct {
	value decimal.Decimal
}

// M builds Money from an int, a float or a decimal. Floats are only meant for
// literals in tests and config defaults.
func M[T float64 | int | int64 | decimal.Decimal](v T) Money {
	return Money{value: newDecimal(v)}
}

// ParseMoney parses a decimal string such as "10000.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{value: d}, nil
}

// MustMoney is ParseMoney for constants; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal         { return m.value }
func (m Money) IsZero() bool                     { return m.value.IsZero() }
func (m Money) IsPositive() bool                 { return m.value.IsPositive() }
func (m Money) IsNegative() bool                 { return m.value.IsNegative() }
func (m Money) Equal(n Money) bool               { return m.value.Equal(n.value) }
func (m Money) LessThan(n Money) bool            { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool     { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool         { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool  { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Add(n Money) Money                { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money                { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money                       { return Money{value: m.value.Neg()} }
func (m Money) Mul(q Shares) Money               { return Money{value: m.value.Mul(q.value)} }
func (m Money) Round(places int32) Money         { return Money{value: m.value.Round(places)} }
func (m Money) String() string                   { return m.value.String() }
func (m Money) StringFixed(places int32) string  { return m.value.StringFixed(places) }
func (m Money) InexactFloat64() float64          { return m.value.InexactFloat64() }

// Fits reports whether m has no more than places decimal digits.
func (m Money) Fits(places int32) bool { return m.value.Equal(m.value.Truncate(places)) }

// Scale multiplies the amount by a plain factor such as an interest multiplier.
func (m Money) Scale(factor decimal.Decimal) Money { return Money{value: m.value.Mul(factor)} }

// DivShares divides an amount by a quantity, rounding half away from zero
// to the given number of places. The result is a per-unit price.
func (m Money) DivShares(q Shares, places int32) Money {
	return Money{value: m.value.DivRound(q.value, places)}
}

// Ratio returns m/n as a percentage rounded to places. A zero denominator
// yields zero.
func (m Money) Ratio(n Money, places int32) Percent {
	if n.value.IsZero() {
		return Percent{}
	}
	return Percent{value: m.value.Mul(hundred).DivRound(n.value, places)}
}

// Format renders the amount with the currency's symbol and grouping, e.g.
// "$10,650.00".
func (m Money) Format(currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.value.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.value.UnmarshalJSON(b)
}

func (m Money) MarshalYAML() (any, error) { return m.value.String(), nil }

func (m *Money) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value implements driver.Valuer; amounts are persisted as exact decimal text.
func (m Money) Value() (driver.Value, error) { return m.value.String(), nil }

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error { return m.value.Scan(src) }

var hundred = decimal.NewFromInt(100)

func newDecimal[T float64 | int | int64 | decimal.Decimal](v T) decimal.Decimal {
	switch x := any(v).(type) {
	case decimal.Decimal:
		return x
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	default:
		panic("unsupported type")
	}
}
