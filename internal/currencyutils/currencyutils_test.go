package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "plain decimal", input: "1234.56", expected: "1234.56"},
		{name: "grouped with symbol", input: "$1,234.56", expected: "1234.56"},
		{name: "accounting negative", input: "(12.50)", expected: "-12.5"},
		{name: "surrounding whitespace", input: "  42 ", expected: "42"},
		{name: "empty is zero", input: "", expected: "0"},
		{name: "garbage", input: "twelve", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"999.999", "$1,000.00"},
		{"1000", "$1,000.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-12", "-$12.00"},
		{"-0.001", "$0.00"},
		{"2.345", "$2.34"},
		{"2.355", "$2.36"},
		{"100000", "$100,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatUSD(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestOrZero(t *testing.T) {
	assert.True(t, OrZero(decimal.NullDecimal{}).IsZero())
	v := decimal.NewFromInt(7)
	assert.True(t, OrZero(decimal.NewNullDecimal(v)).Equal(v))
}
