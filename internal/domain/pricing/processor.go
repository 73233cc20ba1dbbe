// Package pricing applies resolved discounts to a cart and exposes the
// checkout-facing pricing service.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/domain/payment"
)

// DiscountedPrice is the outcome of one pricing run.
type DiscountedPrice struct {
	// OriginalPrice is the sum of base price * quantity over all items.
	OriginalPrice decimal.Decimal
	// FinalPrice is the sum of discounted price * quantity over all items.
	FinalPrice decimal.Decimal
	// AppliedDiscounts maps a discount name to the total it took from the cart.
	AppliedDiscounts map[string]decimal.Decimal
	// Message summarises each applied discount, e.g. "Applied X: 100.00 | ".
	Message string
	// Lines holds the discounted unit price of each item, in input order.
	Lines []decimal.Decimal
}

// Savings returns OriginalPrice - FinalPrice.
func (p DiscountedPrice) Savings() decimal.Decimal {
	return p.OriginalPrice.Sub(p.FinalPrice)
}

// Processor resolves candidate discounts with a Strategy and applies them
// to cart items in order. Later discounts see the price left by earlier ones.
type Processor struct {
	strategy discount.Strategy
	now      func() time.Time
}

// NewProcessor creates a Processor that resolves discounts with strategy.
func NewProcessor(strategy discount.Strategy) *Processor {
	return &Processor{strategy: strategy, now: time.Now}
}

// Apply is ApplyAt evaluated at the processor's current time.
func (p *Processor) Apply(
	discounts []discount.Definition,
	c customer.Profile,
	items []cart.Item,
	pay *payment.Info,
) DiscountedPrice {
	return p.ApplyAt(p.now(), discounts, c, items, pay)
}

// ApplyAt resolves discounts and applies each one to every item it is
// applicable to at now. It mutates the current price of items in place, so
// callers pass a run-scoped copy.
func (p *Processor) ApplyAt(
	now time.Time,
	discounts []discount.Definition,
	c customer.Profile,
	items []cart.Item,
	pay *payment.Info,
) DiscountedPrice {
	original := cart.BaseTotal(items)
	applied := make(map[string]decimal.Decimal)
	var msg strings.Builder

	for _, def := range p.strategy.Resolve(discounts) {
		total := decimal.Zero
		matched := false

		for i := range items {
			item := &items[i]
			if !def.ApplicableAt(now, c, *item, pay) {
				continue
			}
			matched = true

			unit := def.Amount(item.Product.CurrentPrice)
			item.Product.CurrentPrice = item.Product.CurrentPrice.Sub(unit)
			total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		if !matched {
			continue
		}
		applied[def.Name] = applied[def.Name].Add(total)
		fmt.Fprintf(&msg, "Applied %s: %s | ", def.Name, total.StringFixed(2))
	}

	lines := make([]decimal.Decimal, len(items))
	for i, item := range items {
		lines[i] = item.Product.CurrentPrice
	}

	return DiscountedPrice{
		OriginalPrice:    original,
		FinalPrice:       cart.CurrentTotal(items),
		AppliedDiscounts: applied,
		Message:          msg.String(),
		Lines:            lines,
	}
}
