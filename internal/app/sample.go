package app

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/payment"
	"github.com/xenking/kart-pricing/internal/domain/pricing"
	"github.com/xenking/kart-pricing/internal/domain/product"
)

// SampleRequest is the fixed checkout priced by the pricing command: two
// premium T-shirts bought by a gold customer with an ICICI credit card.
func SampleRequest(voucherCode string) pricing.CalculateRequest {
	puma := product.New("P001", "PUMA", product.BrandTierPremium, "T-shirts", decimal.NewFromInt(2000))
	adidas := product.New("A001", "ADIDAS", product.BrandTierPremium, "T-shirts", decimal.NewFromInt(1800))

	return pricing.CalculateRequest{
		Items: []cart.Item{
			cart.NewItem(puma, 1, "M"),
			cart.NewItem(adidas, 1, "L"),
		},
		Customer: customer.Profile{
			ID:    "C001",
			Name:  "John Doe",
			Tier:  customer.TierGold,
			Email: "john@example.com",
		},
		Payment: &payment.Info{
			Method:   payment.MethodCard,
			BankName: "ICICI",
			CardType: payment.CardCredit,
		},
		VoucherCode: voucherCode,
	}
}
