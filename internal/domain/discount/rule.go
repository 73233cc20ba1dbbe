package discount

import (
	"slices"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/payment"
)

// Rule is a single eligibility predicate evaluated against one cart line.
// Implementations are stateless and must not panic; a rule that lacks the
// data it needs reports false.
type Rule interface {
	IsApplicable(c customer.Profile, item cart.Item, p *payment.Info) bool
}

var (
	_ Rule = BrandRule{}
	_ Rule = CategoryRule{}
	_ Rule = CustomerTierRule{}
	_ Rule = PaymentRule{}
)

// BrandRule matches the product brand against include and exclude lists.
type BrandRule struct {
	Include []string
	Exclude []string
}

func (r BrandRule) IsApplicable(_ customer.Profile, item cart.Item, _ *payment.Info) bool {
	return matchSets(item.Product.Brand, r.Include, r.Exclude)
}

// CategoryRule matches the product category against include and exclude lists.
type CategoryRule struct {
	Include []string
	Exclude []string
}

func (r CategoryRule) IsApplicable(_ customer.Profile, item cart.Item, _ *payment.Info) bool {
	return matchSets(item.Product.Category, r.Include, r.Exclude)
}

// CustomerTierRule matches the customer tier against include and exclude lists.
type CustomerTierRule struct {
	Include []customer.Tier
	Exclude []customer.Tier
}

func (r CustomerTierRule) IsApplicable(c customer.Profile, _ cart.Item, _ *payment.Info) bool {
	return matchSets(c.Tier, r.Include, r.Exclude)
}

// PaymentRule restricts a discount to banks, payment methods and card types.
// Empty lists leave that dimension unrestricted, but payment info itself is
// always required.
type PaymentRule struct {
	Banks     []string
	Methods   []payment.Method
	CardTypes []payment.CardType
}

func (r PaymentRule) IsApplicable(_ customer.Profile, _ cart.Item, p *payment.Info) bool {
	if p == nil {
		return false
	}
	if len(r.Banks) > 0 && !slices.Contains(r.Banks, p.BankName) {
		return false
	}
	if len(r.Methods) > 0 && !slices.Contains(r.Methods, p.Method) {
		return false
	}
	if len(r.CardTypes) > 0 && !slices.Contains(r.CardTypes, p.CardType) {
		return false
	}
	return true
}

// matchSets fails when include is non-empty and lacks v, or exclude holds v.
func matchSets[T comparable](v T, include, exclude []T) bool {
	if len(include) > 0 && !slices.Contains(include, v) {
		return false
	}
	return !slices.Contains(exclude, v)
}
