package product

import (
	"github.com/shopspring/decimal"
)

// BrandTier classifies a product's brand positioning.
type BrandTier string

const (
	BrandTierPremium BrandTier = "premium"
	BrandTierRegular BrandTier = "regular"
	BrandTierBudget  BrandTier = "budget"
)

// Product is a catalog item as seen by the pricing pipeline.
//
// BasePrice is the immutable reference price. CurrentPrice is the running
// unit price during a single pricing run and never exceeds BasePrice or
// drops below zero.
type Product struct {
	ID           string
	Brand        string
	BrandTier    BrandTier
	Category     string
	BasePrice    decimal.Decimal
	CurrentPrice decimal.Decimal
}

// New returns a Product whose current price starts at the base price.
func New(id, brand string, tier BrandTier, category string, price decimal.Decimal) Product {
	return Product{
		ID:           id,
		Brand:        brand,
		BrandTier:    tier,
		Category:     category,
		BasePrice:    price,
		CurrentPrice: price,
	}
}

// Reset restores the current price to the base price.
func (p *Product) Reset() {
	p.CurrentPrice = p.BasePrice
}
