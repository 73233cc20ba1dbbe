package discount

import (
	"strings"

	"github.com/go-faster/errors"
)

// Type is the coarse category of a discount. At most one discount of each
// type survives resolution, and the type ordering decides stacking sequence.
type Type string

const (
	TypeBrand    Type = "brand_discount"
	TypeCategory Type = "category_discount"
	TypeBank     Type = "bank_discount"
	TypeVoucher  Type = "voucher_discount"
)

// DefaultOrdering applies brand and category discounts first, then the
// voucher, then the bank offer on the already reduced price.
var DefaultOrdering = []Type{TypeBrand, TypeCategory, TypeVoucher, TypeBank}

// ParseType accepts both the full name ("brand_discount") and the short form
// ("brand"), case-insensitively.
func ParseType(s string) (Type, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasSuffix(v, "_discount") {
		v += "_discount"
	}
	switch t := Type(v); t {
	case TypeBrand, TypeCategory, TypeBank, TypeVoucher:
		return t, nil
	default:
		return "", errors.Errorf("unknown discount type %q", s)
	}
}

// ParseOrdering parses a list of type names and rejects duplicates.
func ParseOrdering(names []string) ([]Type, error) {
	out := make([]Type, 0, len(names))
	seen := make(map[Type]struct{}, len(names))
	for _, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[t]; ok {
			return nil, errors.Errorf("discount type %q listed twice", t)
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
