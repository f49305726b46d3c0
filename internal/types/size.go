package types

import (
	"github.com/shopspring/decimal"
)

// Size is a signed number of contracts or shares. It supports fractional
// values with exact decimal arithmetic; the sign encodes direction
// (positive is long, negative is short) and zero means no position.
type Size struct {
	value decimal.Decimal
}

// NewSize returns a whole-contract size.
func NewSize(contracts int64) Size {
	return Size{value: decimal.NewFromInt(contracts)}
}

// SizeFromFloat converts a float quantity to a size.
func SizeFromFloat(f float64) Size {
	return Size{value: decimal.NewFromFloat(f)}
}

// SizeFromString parses a decimal string like "0.125" into a size.
func SizeFromString(s string) (Size, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Size{}, err
	}
	return Size{value: d}, nil
}

// Add returns the sum of two sizes.
func (s Size) Add(other Size) Size {
	return Size{value: s.value.Add(other.value)}
}

// Neg returns the size with its sign flipped.
func (s Size) Neg() Size {
	return Size{value: s.value.Neg()}
}

// Truncate cuts the size toward zero at the given number of decimal places.
func (s Size) Truncate(places int32) Size {
	return Size{value: s.value.Truncate(places)}
}

// IsZero reports whether the size is exactly zero.
func (s Size) IsZero() bool {
	return s.value.IsZero()
}

// Sign returns -1, 0 or 1.
func (s Size) Sign() int {
	return s.value.Sign()
}

// Abs returns the nonnegative size.
func (s Size) Abs() Size {
	return Size{value: s.value.Abs()}
}

// Equal reports whether two sizes represent the same quantity.
func (s Size) Equal(other Size) bool {
	return s.value.Equal(other.value)
}

// Float64 returns the size as a float, losing decimal exactness.
func (s Size) Float64() float64 {
	f, _ := s.value.Float64()
	return f
}

func (s Size) String() string {
	return s.value.String()
}

// MarshalJSON renders the size as a JSON number string, preserving exactness.
func (s Size) MarshalJSON() ([]byte, error) {
	return s.value.MarshalJSON()
}

// UnmarshalJSON parses a JSON number or string into the size.
func (s *Size) UnmarshalJSON(data []byte) error {
	return s.value.UnmarshalJSON(data)
}
