package discount

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Policy computes the discount taken from a unit price.
type Policy interface {
	Amount(price decimal.Decimal) decimal.Decimal
}

var (
	_ Policy = Percentage{}
	_ Policy = Fixed{}
)

// Percentage takes Percent percent of the current price.
type Percentage struct {
	Percent decimal.Decimal
}

// Amount returns price * Percent / 100, clamped to [0, price].
func (p Percentage) Amount(price decimal.Decimal) decimal.Decimal {
	return clamp(price.Mul(p.Percent).Div(hundred), price)
}

// Fixed takes a flat amount, never more than the current price.
type Fixed struct {
	Value decimal.Decimal
}

// Amount returns min(Value, price), floored at zero.
func (f Fixed) Amount(price decimal.Decimal) decimal.Decimal {
	return clamp(decimal.Min(f.Value, price), price)
}

// clamp keeps amount within [0, price] so a line price stays non-negative
// and never increases.
func clamp(amount, price decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() || price.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, price)
}
