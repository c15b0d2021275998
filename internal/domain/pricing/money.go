package pricing

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for every amount
const MoneyScale int32 = 2

// RoundMoney rounds an amount to MoneyScale digits, half away from zero
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// FormatMoney renders an amount with exactly MoneyScale digits
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
