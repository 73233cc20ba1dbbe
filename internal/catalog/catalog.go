// Package catalog reads discount catalogs written in YAML.
//
// A catalog is a list of discounts:
//
//	discounts:
//	  - name: PUMA Brand Sale
//	    type: brand
//	    percentage: 40
//	    max_discount: 5000
//	    expires_in: 720h
//	    rules:
//	      - brand: {include: [PUMA]}
//
// Amounts are decimal strings; expiry is either an absolute RFC 3339
// expires_at or an expires_in duration relative to the load time.
package catalog

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/domain/payment"
)

// Document is the top-level YAML shape.
type Document struct {
	Discounts []Entry `yaml:"discounts"`
}

// Entry describes one discount. Exactly one of Percentage and Fixed must be
// set, and exactly one of ExpiresAt and ExpiresIn.
type Entry struct {
	Name        string      `yaml:"name"`
	Code        string      `yaml:"code"`
	Description string      `yaml:"description"`
	Type        string      `yaml:"type"`
	Percentage  string      `yaml:"percentage"`
	Fixed       string      `yaml:"fixed"`
	MaxDiscount string      `yaml:"max_discount"`
	ExpiresAt   string      `yaml:"expires_at"`
	ExpiresIn   string      `yaml:"expires_in"`
	Rules       []RuleEntry `yaml:"rules"`
}

// RuleEntry holds exactly one rule kind.
type RuleEntry struct {
	Brand        *ListEntry    `yaml:"brand"`
	Category     *ListEntry    `yaml:"category"`
	CustomerTier *ListEntry    `yaml:"customer_tier"`
	Payment      *PaymentEntry `yaml:"payment"`
}

// ListEntry is an include/exclude pair.
type ListEntry struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// PaymentEntry restricts a discount to payment details.
type PaymentEntry struct {
	Banks     []string `yaml:"banks"`
	Methods   []string `yaml:"methods"`
	CardTypes []string `yaml:"card_types"`
}

// Parse decodes a YAML catalog. Relative expiries are resolved against now.
func Parse(data []byte, now time.Time) ([]discount.Definition, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	return doc.Definitions(now)
}

// Definitions converts every entry, failing on the first invalid one.
func (doc Document) Definitions(now time.Time) ([]discount.Definition, error) {
	defs := make([]discount.Definition, 0, len(doc.Discounts))
	for i, e := range doc.Discounts {
		def, err := e.Definition(now)
		if err != nil {
			return nil, errors.Wrapf(err, "discount %d (%s)", i, e.Name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Definition converts the entry into a discount definition.
func (e Entry) Definition(now time.Time) (discount.Definition, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return discount.Definition{}, errors.New("name is required")
	}

	typ, err := discount.ParseType(e.Type)
	if err != nil {
		return discount.Definition{}, err
	}

	policy, err := e.policy()
	if err != nil {
		return discount.Definition{}, err
	}

	expiresAt, err := e.expiry(now)
	if err != nil {
		return discount.Definition{}, err
	}

	var maxDiscount decimal.Decimal
	if e.MaxDiscount != "" {
		if maxDiscount, err = parseAmount("max_discount", e.MaxDiscount); err != nil {
			return discount.Definition{}, err
		}
	}

	rules := make([]discount.Rule, 0, len(e.Rules))
	for i, re := range e.Rules {
		rule, err := re.Rule()
		if err != nil {
			return discount.Definition{}, errors.Wrapf(err, "rule %d", i)
		}
		rules = append(rules, rule)
	}

	return discount.Definition{
		Name:        name,
		Code:        strings.TrimSpace(e.Code),
		Description: e.Description,
		Type:        typ,
		Rules:       rules,
		Policy:      policy,
		ExpiresAt:   expiresAt,
		MaxDiscount: maxDiscount,
	}, nil
}

func (e Entry) policy() (discount.Policy, error) {
	switch {
	case e.Percentage != "" && e.Fixed != "":
		return nil, errors.New("percentage and fixed are mutually exclusive")
	case e.Percentage != "":
		pct, err := parseAmount("percentage", e.Percentage)
		if err != nil {
			return nil, err
		}
		if pct.GreaterThan(decimal.NewFromInt(100)) {
			return nil, errors.Errorf("percentage %s exceeds 100", pct)
		}
		return discount.Percentage{Percent: pct}, nil
	case e.Fixed != "":
		amount, err := parseAmount("fixed", e.Fixed)
		if err != nil {
			return nil, err
		}
		return discount.Fixed{Value: amount}, nil
	default:
		return nil, errors.New("one of percentage or fixed is required")
	}
}

func (e Entry) expiry(now time.Time) (time.Time, error) {
	switch {
	case e.ExpiresAt != "" && e.ExpiresIn != "":
		return time.Time{}, errors.New("expires_at and expires_in are mutually exclusive")
	case e.ExpiresAt != "":
		t, err := time.Parse(time.RFC3339, e.ExpiresAt)
		if err != nil {
			return time.Time{}, errors.Wrap(err, "parse expires_at")
		}
		return t, nil
	case e.ExpiresIn != "":
		d, err := time.ParseDuration(e.ExpiresIn)
		if err != nil {
			return time.Time{}, errors.Wrap(err, "parse expires_in")
		}
		return now.Add(d), nil
	default:
		return time.Time{}, errors.New("one of expires_at or expires_in is required")
	}
}

// Rule converts the entry into a discount rule.
func (re RuleEntry) Rule() (discount.Rule, error) {
	var (
		rule discount.Rule
		set  int
	)
	if re.Brand != nil {
		set++
		rule = discount.BrandRule{Include: re.Brand.Include, Exclude: re.Brand.Exclude}
	}
	if re.Category != nil {
		set++
		rule = discount.CategoryRule{Include: re.Category.Include, Exclude: re.Category.Exclude}
	}
	if re.CustomerTier != nil {
		set++
		include, err := parseList(re.CustomerTier.Include, customer.ParseTier)
		if err != nil {
			return nil, err
		}
		exclude, err := parseList(re.CustomerTier.Exclude, customer.ParseTier)
		if err != nil {
			return nil, err
		}
		rule = discount.CustomerTierRule{Include: include, Exclude: exclude}
	}
	if re.Payment != nil {
		set++
		methods, err := parseList(re.Payment.Methods, payment.ParseMethod)
		if err != nil {
			return nil, err
		}
		cards, err := parseList(re.Payment.CardTypes, payment.ParseCardType)
		if err != nil {
			return nil, err
		}
		rule = discount.PaymentRule{Banks: re.Payment.Banks, Methods: methods, CardTypes: cards}
	}

	switch set {
	case 1:
		return rule, nil
	case 0:
		return nil, errors.New("empty rule")
	default:
		return nil, errors.New("rule must have exactly one kind")
	}
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse %s", field)
	}
	if v.IsNegative() {
		return decimal.Zero, errors.Errorf("%s must not be negative, got %s", field, v)
	}
	return v, nil
}

func parseList[T any](in []string, parse func(string) (T, error)) ([]T, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(in))
	for _, s := range in {
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
