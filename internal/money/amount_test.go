package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeAmount(t *testing.T) {
	euro := Format{DecimalSeparator: ",", ThousandsSeparator: ".", Decimals: 2}
	spaced := Format{DecimalSeparator: ",", ThousandsSeparator: " ", Decimals: 2}

	tests := []struct {
		name   string
		in     string
		format Format
		want   string
	}{
		{"plain integer", "10", DefaultFormat, "10"},
		{"plain decimal keeps precision", "3.005", DefaultFormat, "3.005"},
		{"negative number", "-4.5", DefaultFormat, "-4.5"},
		{"surrounding space", "  7.25 ", DefaultFormat, "7.25"},
		{"empty", "", DefaultFormat, "0"},
		{"thousands separator", "1,234.50", DefaultFormat, "1234.5"},
		{"currency symbol", "$12.999", DefaultFormat, "13"},
		{"negative with symbol", "-$3.10", DefaultFormat, "-3.1"},
		{"letters only", "abc", DefaultFormat, "0"},
		{"euro decimal comma", "12,50", euro, "12.5"},
		{"euro thousands dot", "1.234,56", euro, "1234.56"},
		{"space thousands", "1 234,5", spaced, "1234.5"},
		{"trailing garbage", "5.00 USD", DefaultFormat, "5"},
		{"extra dots truncate", "1.2.3", DefaultFormat, "1.2"},
		{"exponent letter stripped", "1e3", DefaultFormat, "13"},
		{"large exponent stays small", "1e2000000", DefaultFormat, "12000000"},
		{"negative exponent stripped", "-2E-1", DefaultFormat, "-21"},
		{"leading dot", ".5", DefaultFormat, "0.5"},
		{"trailing dot", "10.", DefaultFormat, "10"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeAmount(tc.in, tc.format)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s, want %s", got, tc.want)
		})
	}
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("0"))
	assert.False(t, IsEmpty("0.0"))
	assert.False(t, IsEmpty(" "))
	assert.False(t, IsEmpty("10"))
}
