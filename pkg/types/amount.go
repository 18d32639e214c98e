package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// YoctoPerNEAR is the exponent of the smallest native unit: 1 NEAR = 10^24 yocto.
const YoctoPerNEAR = 24

// Amount is a non-fractional quantity of yocto, the smallest native value unit.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{d: decimal.Zero}

// NEAR returns n whole NEAR expressed in yocto.
func NEAR(n int64) Amount {
	return Amount{d: decimal.New(n, YoctoPerNEAR)}
}

// Yocto returns an amount of n yocto.
func Yocto(n int64) Amount {
	return Amount{d: decimal.NewFromInt(n)}
}

// ParseAmount parses a base-10 yocto integer.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsInteger() {
		return Amount{}, fmt.Errorf("invalid amount %q: fractional yocto", s)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("invalid amount %q: negative", s)
	}
	return Amount{d: d}, nil
}

// ParseNEAR parses a decimal NEAR quantity such as "1.5".
func ParseNEAR(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid NEAR amount %q: %w", s, err)
	}
	y := d.Shift(YoctoPerNEAR)
	if !y.IsInteger() {
		return Amount{}, fmt.Errorf("invalid NEAR amount %q: more than %d decimals", s, YoctoPerNEAR)
	}
	if y.IsNegative() {
		return Amount{}, fmt.Errorf("invalid NEAR amount %q: negative", s)
	}
	return Amount{d: y}, nil
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b. The result may be negative.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// String returns the amount in yocto.
func (a Amount) String() string {
	return a.d.String()
}

// NEARString returns the amount in NEAR with trailing zeros trimmed.
func (a Amount) NEARString() string {
	return a.d.Shift(-YoctoPerNEAR).String()
}

// MarshalJSON encodes the amount as a quoted yocto integer.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a quoted or bare yocto integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount must be a yocto integer: %w", err)
		}
		s = n.String()
	}
	if s == "" {
		*a = Zero
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
