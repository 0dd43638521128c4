package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Format describes how amounts are written by merchants and buyers.
type Format struct {
	DecimalSeparator   string
	ThousandsSeparator string
	Decimals           int32
}

var DefaultFormat = Format{DecimalSeparator: ".", ThousandsSeparator: ",", Decimals: 2}

var (
	plainNumber    = regexp.MustCompile(`^-?[0-9]*\.?[0-9]+$`)
	nonAmountChars = regexp.MustCompile(`[^0-9.]`)
	leadingNumber  = regexp.MustCompile(`^[0-9]*\.?[0-9]*`)
)

// SanitizeAmount turns user-entered text into an amount. Plain decimal
// numbers are taken as-is. Anything else, exponent notation included, has
// its separators normalized, every character other than digits and the
// decimal point removed, and is rounded to f.Decimals. Text with no usable
// digits yields zero.
func SanitizeAmount(s string, f Format) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	if plainNumber.MatchString(s) {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}

	switch {
	case f.DecimalSeparator == "," && strings.Contains(s, ","):
		switch {
		case (f.ThousandsSeparator == "." || f.ThousandsSeparator == " ") && strings.Contains(s, f.ThousandsSeparator):
			s = strings.ReplaceAll(s, f.ThousandsSeparator, "")
		case f.ThousandsSeparator == "" && strings.Contains(s, "."):
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	case f.ThousandsSeparator == "," && strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", "")
	}

	negative := strings.HasPrefix(s, "-")

	s = nonAmountChars.ReplaceAllString(s, "")
	s = leadingNumber.FindString(s)
	if s == "" || s == "." {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return decimal.Zero
	}
	d = d.Round(f.Decimals)
	if negative {
		d = d.Neg()
	}
	return d
}

// IsEmpty reports whether a submitted value counts as absent: the empty
// string or a literal "0".
func IsEmpty(s string) bool {
	return s == "" || s == "0"
}
