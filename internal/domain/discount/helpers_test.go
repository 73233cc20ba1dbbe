package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/product"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newItem(brand, category, price string) cart.Item {
	return cart.NewItem(product.New("p1", brand, product.BrandTierPremium, category, d(price)), 1, "M")
}

func newCustomer(tier customer.Tier) customer.Profile {
	return customer.Profile{ID: "c1", Name: "John Doe", Tier: tier, Email: "jd@example.com"}
}
