package domain

import "github.com/shopspring/decimal"

// DefaultCurrency is reported for every account and transaction total.
const DefaultCurrency = "EUR"

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
