// Package discount defines discount definitions, their eligibility rules and
// amount policies, and the strategies that decide which discounts stack.
package discount

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/payment"
)

// Definition is a named, typed, expiring discount. Definitions are immutable
// once built and may be shared across pricing runs.
type Definition struct {
	// ID is the storage identity, empty for definitions that never hit a database.
	ID   string
	Name string
	// Code addresses the discount directly. When empty the Name is used.
	Code        string
	Description string
	Type        Type
	Rules       []Rule
	Policy      Policy
	ExpiresAt   time.Time
	// MaxDiscount caps the amount taken from a single unit price.
	// Zero leaves it uncapped.
	MaxDiscount decimal.Decimal
}

// LookupCode returns the code used for direct lookup.
func (d Definition) LookupCode() string {
	if d.Code != "" {
		return d.Code
	}
	return d.Name
}

// ExpiredAt reports whether the discount has expired at now. The expiry
// instant itself counts as expired.
func (d Definition) ExpiredAt(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}

// IsExpired reports whether the discount has expired.
func (d Definition) IsExpired() bool {
	return d.ExpiredAt(time.Now())
}

// ApplicableAt reports whether the discount is unexpired at now and every
// rule accepts the given line.
func (d Definition) ApplicableAt(now time.Time, c customer.Profile, item cart.Item, p *payment.Info) bool {
	if d.ExpiredAt(now) {
		return false
	}
	for _, rule := range d.Rules {
		if rule == nil || !rule.IsApplicable(c, item, p) {
			return false
		}
	}
	return true
}

// IsApplicable is ApplicableAt evaluated at the current time.
func (d Definition) IsApplicable(c customer.Profile, item cart.Item, p *payment.Info) bool {
	return d.ApplicableAt(time.Now(), c, item, p)
}

// Amount returns the discount taken from the given unit price, limited by
// MaxDiscount when set. A definition without a policy discounts nothing.
func (d Definition) Amount(price decimal.Decimal) decimal.Decimal {
	if d.Policy == nil {
		return decimal.Zero
	}
	amount := d.Policy.Amount(price)
	if d.Capped() {
		amount = decimal.Min(amount, d.MaxDiscount)
	}
	return amount
}

// Capped reports whether MaxDiscount limits this discount.
func (d Definition) Capped() bool {
	return d.MaxDiscount.IsPositive()
}

// Repository supplies the discount catalog.
type Repository interface {
	// ListActive returns all unexpired discounts whose type is not excluded.
	ListActive(ctx context.Context, exclude ...Type) ([]Definition, error)
	// FindByCode returns the discount addressed by code, expired or not.
	// It returns ErrDiscountNotFound when no entry matches.
	FindByCode(ctx context.Context, code string) (*Definition, error)
}
