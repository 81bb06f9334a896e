package market

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Shares is a fractional share quantity.
type Shares struct {
	value decimal.Decimal
}

// Q builds a share quantity from an int, a float or a decimal.
func Q[T float64 | int | int64 | decimal.Decimal](v T) Shares {
	return Shares{value: newDecimal(v)}
}

// ParseShares parses a decimal string such as "2.5".
func ParseShares(s string) (Shares, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Shares{}, fmt.Errorf("parse shares %q: %w", s, err)
	}
	return Shares{value: d}, nil
}

func (q Shares) Decimal() decimal.Decimal     { return q.value }
func (q Shares) IsZero() bool                 { return q.value.IsZero() }
func (q Shares) IsPositive() bool             { return q.value.IsPositive() }
func (q Shares) Equal(p Shares) bool          { return q.value.Equal(p.value) }
func (q Shares) LessThan(p Shares) bool       { return q.value.LessThan(p.value) }
func (q Shares) GreaterThan(p Shares) bool    { return q.value.GreaterThan(p.value) }
func (q Shares) Add(p Shares) Shares          { return Shares{value: q.value.Add(p.value)} }
func (q Shares) Sub(p Shares) Shares          { return Shares{value: q.value.Sub(p.value)} }
func (q Shares) String() string               { return q.value.String() }
func (q Shares) Value() (driver.Value, error) { return q.value.String(), nil }
func (q *Shares) Scan(src any) error          { return q.value.Scan(src) }

// Fits reports whether q has no more than places decimal digits.
func (q Shares) Fits(places int32) bool { return q.value.Equal(q.value.Truncate(places)) }

func (q Shares) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.value.String() + `"`), nil
}

func (q *Shares) UnmarshalJSON(b []byte) error {
	return q.value.UnmarshalJSON(b)
}

// Percent is a percentage figure, e.g. 6.5 for 6.5%.
type Percent struct {
	value decimal.Decimal
}

// P builds a percentage from an int, a float or a decimal.
func P[T float64 | int | int64 | decimal.Decimal](v T) Percent {
	return Percent{value: newDecimal(v)}
}

func (p Percent) Decimal() decimal.Decimal { return p.value }
func (p Percent) IsZero() bool             { return p.value.IsZero() }
func (p Percent) Equal(o Percent) bool     { return p.value.Equal(o.value) }
func (p Percent) String() string           { return p.value.StringFixed(2) + "%" }

// SignedString renders the percentage with an explicit sign.
func (p Percent) SignedString() string {
	if p.value.IsPositive() {
		return "+" + p.String()
	}
	return p.String()
}

// Factor returns 1 + p/100.
func (p Percent) Factor() decimal.Decimal {
	return decimal.NewFromInt(1).Add(p.value.Div(hundred))
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.value.String() + `"`), nil
}

func (p *Percent) UnmarshalJSON(b []byte) error {
	return p.value.UnmarshalJSON(b)
}

func (p Percent) Value() (driver.Value, error) { return p.value.String(), nil }
func (p *Percent) Scan(src any) error          { return p.value.Scan(src) }
