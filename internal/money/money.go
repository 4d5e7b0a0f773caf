// Package money converts between stored minor units (cents) and major-unit
// amounts, and formats amounts as Brazilian reais.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// ToMajor converts cents to a major-unit float for JSON responses.
func ToMajor(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// FromMajor converts a major-unit amount to cents, rounding half away from zero.
func FromMajor(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// Signed returns the balance contribution of a stored value.
func Signed(income bool, cents int64) int64 {
	if income {
		return cents
	}
	return -cents
}

// Format renders cents as "R$ 1.234,56". Negative amounts are prefixed
// with a minus sign: "-R$ 1,00".
func Format(cents int64) string {
	d := decimal.New(cents, -2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "R$ " + groupThousands(intPart) + "," + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Parse reads a display amount into cents. It accepts "R$ 1.234,56",
// "1234,56" and "1234.56". When a comma is present it is the decimal
// separator and dots are grouping; otherwise a single dot is decimal.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}
