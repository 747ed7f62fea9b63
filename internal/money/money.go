// Package money converts between display amounts and the signed minor
// units (hundredths) the engine stores.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
)

// DefaultSymbol is appended by Format when no symbol is given.
const DefaultSymbol = "Kč"

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// Parse converts a display amount such as "1 234,56 Kč", "1,234.56" or
// "-50" to minor units, rounding half away from zero on the third decimal.
func Parse(text string) (int64, error) {
	s := strings.TrimSpace(text)
	for _, suffix := range []string{"Kč", "kč", "CZK", "czk"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "").Replace(s)
	if s == "" {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount is empty")
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidAmount, err)
	}
	minor := d.Shift(2).Round(0)
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount is out of range")
	}
	return minor.IntPart(), nil
}

// normalizeSeparators rewrites s so that '.' is the only decimal separator.
// When both ',' and '.' occur the last one is the decimal separator; a
// separator repeated on its own is a thousands separator.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// FromMinor returns minor units as a decimal amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// Format renders minor units as "1 234 567,89 Kč". An empty symbol falls
// back to DefaultSymbol.
func Format(minor int64, symbol string) string {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return FormatPlain(minor) + " " + symbol
}

// FormatAbs renders the absolute value of minor units, used for expense
// columns that are shown without a sign.
func FormatAbs(minor int64, symbol string) string {
	if minor < 0 {
		minor = -minor
	}
	return Format(minor, symbol)
}

// FormatPlain renders minor units with space-grouped thousands and a
// decimal comma, without a currency symbol.
func FormatPlain(minor int64) string {
	fixed := FromMinor(minor).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
