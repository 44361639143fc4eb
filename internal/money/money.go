// Package money provides the fixed-point decimal amount type shared by every
// module that touches a rupee value. Amounts carry exactly two fractional
// digits (paise); float64 cannot guarantee that across repeated allocation
// arithmetic, so arithmetic goes through shopspring/decimal.
package money

import (
	"github.com/shopspring/decimal"
)

// Amount is a rupee value rounded to two fractional digits on every
// construction and arithmetic result. It is a thin wrapper, not a type
// alias, so every accessor stays explicit about rounding to paise.
type Amount struct {
	decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{decimal.Zero}

// New builds an Amount from a float, rounded to 2 decimal places.
func New(v float64) Amount {
	return Amount{decimal.NewFromFloat(v).Round(2)}
}

// NewFromInt builds an Amount from a whole-rupee integer.
func NewFromInt(v int64) Amount {
	return Amount{decimal.NewFromInt(v).Round(2)}
}

// FromDecimal wraps a decimal.Decimal, rounding to 2 places.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d.Round(2)}
}

// Add returns a+b, rounded to 2 places.
func (a Amount) Add(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal).Round(2)}
}

// Sub returns a-b, rounded to 2 places.
func (a Amount) Sub(b Amount) Amount {
	return Amount{a.Decimal.Sub(b.Decimal).Round(2)}
}

// Mul returns a*factor, rounded to 2 places.
func (a Amount) Mul(factor float64) Amount {
	return Amount{a.Decimal.Mul(decimal.NewFromFloat(factor)).Round(2)}
}

// MulPercent returns a * (pct/100), rounded to 2 places.
func (a Amount) MulPercent(pct float64) Amount {
	return a.Mul(pct / 100.0)
}

// RoundRupee rounds to the nearest whole rupee.
func (a Amount) RoundRupee() Amount {
	return Amount{a.Decimal.Round(0)}
}

// Min returns the smaller of a and b.
func (a Amount) Min(b Amount) Amount {
	if a.Decimal.Cmp(b.Decimal) <= 0 {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func (a Amount) Max(b Amount) Amount {
	if a.Decimal.Cmp(b.Decimal) >= 0 {
		return a
	}
	return b
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.Decimal.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.Decimal.IsPositive()
}

// IsNegative reports whether the amount is strictly less than zero.
func (a Amount) IsNegative() bool {
	return a.Decimal.IsNegative()
}

// GreaterThan reports whether a > b.
func (a Amount) GreaterThan(b Amount) bool {
	return a.Decimal.Cmp(b.Decimal) > 0
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.Decimal.Cmp(b.Decimal) < 0
}

// Equal reports whether a == b.
func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

// Float64 returns the amount as a float64, for logging and LLM prompts only.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal.Float64()
	return f
}

// Sum adds a slice of amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
