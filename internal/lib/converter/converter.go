package converter

import "github.com/shopspring/decimal"

// ConvertAmountFloatToDecimal normalizes an API-supplied amount to two
// decimal places, the precision balances are kept in.
func ConvertAmountFloatToDecimal(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

func ConvertAmountDecimalToString(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
