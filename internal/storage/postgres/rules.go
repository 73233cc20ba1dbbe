package postgres

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-pricing/internal/domain/customer"
	"github.com/xenking/kart-pricing/internal/domain/discount"
	"github.com/xenking/kart-pricing/internal/domain/payment"
)

// Rule kinds as stored in the rules JSONB column.
const (
	ruleBrand        = "brand"
	ruleCategory     = "category"
	ruleCustomerTier = "customer_tier"
	rulePayment      = "payment"
)

// encodeRules renders rules as a JSON array of tagged objects:
//
//	[{"kind":"brand","include":["PUMA"],"exclude":[]}]
func encodeRules(rules []discount.Rule) ([]byte, error) {
	var e jx.Encoder
	e.ArrStart()
	for i, rule := range rules {
		if err := encodeRule(&e, rule); err != nil {
			return nil, errors.Wrapf(err, "rule %d", i)
		}
	}
	e.ArrEnd()
	return e.Bytes(), nil
}

func encodeRule(e *jx.Encoder, rule discount.Rule) error {
	e.ObjStart()
	switch r := rule.(type) {
	case discount.BrandRule:
		e.FieldStart("kind")
		e.Str(ruleBrand)
		encodeLists(e, r.Include, r.Exclude)
	case discount.CategoryRule:
		e.FieldStart("kind")
		e.Str(ruleCategory)
		encodeLists(e, r.Include, r.Exclude)
	case discount.CustomerTierRule:
		e.FieldStart("kind")
		e.Str(ruleCustomerTier)
		encodeLists(e, r.Include, r.Exclude)
	case discount.PaymentRule:
		e.FieldStart("kind")
		e.Str(rulePayment)
		e.FieldStart("banks")
		encodeStrings(e, r.Banks)
		e.FieldStart("methods")
		encodeStrings(e, r.Methods)
		e.FieldStart("card_types")
		encodeStrings(e, r.CardTypes)
	default:
		return errors.Errorf("unsupported rule %T", rule)
	}
	e.ObjEnd()
	return nil
}

func encodeLists[T ~string](e *jx.Encoder, include, exclude []T) {
	e.FieldStart("include")
	encodeStrings(e, include)
	e.FieldStart("exclude")
	encodeStrings(e, exclude)
}

func encodeStrings[T ~string](e *jx.Encoder, values []T) {
	e.ArrStart()
	for _, v := range values {
		e.Str(string(v))
	}
	e.ArrEnd()
}

// storedRule is the union of every rule field; kind selects which apply.
type storedRule struct {
	kind      string
	include   []string
	exclude   []string
	banks     []string
	methods   []string
	cardTypes []string
}

// decodeRules parses the rules column. Unknown kinds and values are errors
// so a bad row never reaches pricing.
func decodeRules(data []byte) ([]discount.Rule, error) {
	var rules []discount.Rule
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		var sr storedRule
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "kind":
				sr.kind, err = d.Str()
			case "include":
				sr.include, err = decodeStrings(d)
			case "exclude":
				sr.exclude, err = decodeStrings(d)
			case "banks":
				sr.banks, err = decodeStrings(d)
			case "methods":
				sr.methods, err = decodeStrings(d)
			case "card_types":
				sr.cardTypes, err = decodeStrings(d)
			default:
				err = d.Skip()
			}
			if err != nil {
				return errors.Wrapf(err, "field %q", key)
			}
			return nil
		}); err != nil {
			return err
		}

		rule, err := sr.rule()
		if err != nil {
			return errors.Wrapf(err, "rule %d", len(rules))
		}
		rules = append(rules, rule)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode rules")
	}
	return rules, nil
}

func decodeStrings(d *jx.Decoder) ([]string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func (sr storedRule) rule() (discount.Rule, error) {
	switch sr.kind {
	case ruleBrand:
		return discount.BrandRule{Include: sr.include, Exclude: sr.exclude}, nil
	case ruleCategory:
		return discount.CategoryRule{Include: sr.include, Exclude: sr.exclude}, nil
	case ruleCustomerTier:
		include, err := parseAll(sr.include, customer.ParseTier)
		if err != nil {
			return nil, err
		}
		exclude, err := parseAll(sr.exclude, customer.ParseTier)
		if err != nil {
			return nil, err
		}
		return discount.CustomerTierRule{Include: include, Exclude: exclude}, nil
	case rulePayment:
		methods, err := parseAll(sr.methods, payment.ParseMethod)
		if err != nil {
			return nil, err
		}
		cards, err := parseAll(sr.cardTypes, payment.ParseCardType)
		if err != nil {
			return nil, err
		}
		return discount.PaymentRule{Banks: sr.banks, Methods: methods, CardTypes: cards}, nil
	default:
		return nil, errors.Errorf("unknown rule kind %q", sr.kind)
	}
}

func parseAll[T any](in []string, parse func(string) (T, error)) ([]T, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]T, len(in))
	for i, s := range in {
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
