// Package cart holds the line items priced by a single checkout request.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// Item is a cart line. The embedded product's CurrentPrice is mutated while a
// pricing run applies discounts, so an Item must not be shared between runs.
type Item struct {
	Product  product.Product
	Quantity int
	Size     string
}

// NewItem returns an Item for the given product with its current price reset
// to the base price.
func NewItem(p product.Product, quantity int, size string) Item {
	p.Reset()
	return Item{Product: p, Quantity: quantity, Size: size}
}

// Clone returns a run-scoped copy of items with every current price reset to
// the base price. Products are held by value, so price mutations on the copy
// never reach the caller's slice.
func Clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		out[i].Product.Reset()
	}
	return out
}

// quantity returns the line quantity as a decimal.
func (i Item) quantity() decimal.Decimal {
	return decimal.NewFromInt(int64(i.Quantity))
}

// BaseTotal returns the line total at base price.
func (i Item) BaseTotal() decimal.Decimal {
	return i.Product.BasePrice.Mul(i.quantity())
}

// CurrentTotal returns the line total at the current running price.
func (i Item) CurrentTotal() decimal.Decimal {
	return i.Product.CurrentPrice.Mul(i.quantity())
}

// BaseTotal returns the sum of base price * quantity across items.
func BaseTotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.BaseTotal())
	}
	return sum
}

// CurrentTotal returns the sum of current price * quantity across items.
func CurrentTotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.CurrentTotal())
	}
	return sum
}
