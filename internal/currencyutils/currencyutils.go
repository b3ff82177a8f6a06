// Package currencyutils parses and formats the dollar amounts that appear in payout data.
package currencyutils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a dollar amount such as "1234.56", "1,234.56" or "$1,234.56".
// An empty (or whitespace only) string is zero.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount strips the currency symbol, grouping separators and whitespace,
// and turns an accounting-style "(12.00)" into "-12.00".
func StandardizeAmount(amountStr string) string {
	s := strings.TrimSpace(amountStr)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("$", "", ",", "", " ", "", "USD", "").Replace(s)
	if negative && s != "" {
		s = "-" + s
	}
	return s
}

// FormatUSD renders an amount with the "$#,##0.00" pattern, e.g. "$1,234.50" or "-$12.00".
// Half-even rounding is applied at two places.
func FormatUSD(amount decimal.Decimal) string {
	fixed := amount.RoundBank(2).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		fixed = fixed[1:]
		if strings.Trim(fixed, "0.") != "" {
			sign = "-"
		}
	}

	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// OrZero returns the decimal value of a nullable column, zero when it is NULL.
func OrZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

