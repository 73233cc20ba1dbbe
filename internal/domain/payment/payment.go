package payment

import (
	"strings"

	"github.com/go-faster/errors"
)

// Method is the way a customer pays for the order.
type Method string

const (
	MethodCard           Method = "card_payment"
	MethodNetBanking     Method = "net_banking"
	MethodUPI            Method = "upi"
	MethodWallet         Method = "wallet"
	MethodCashOnDelivery Method = "cash_on_delivery"
)

// CardType distinguishes debit from credit cards.
type CardType string

const (
	CardDebit  CardType = "debit_card"
	CardCredit CardType = "credit_card"
)

// Info describes how the order is paid. BankName and CardType are optional
// and left empty when unknown.
type Info struct {
	Method   Method
	BankName string
	CardType CardType
}

// ParseMethod parses a payment method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodCard, MethodNetBanking, MethodUPI, MethodWallet, MethodCashOnDelivery:
		return m, nil
	default:
		return "", errors.Errorf("unknown payment method %q", s)
	}
}

// ParseCardType parses a card type. Both "credit_card" and "credit" are
// accepted.
func ParseCardType(s string) (CardType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasSuffix(v, "_card") {
		v += "_card"
	}
	switch c := CardType(v); c {
	case CardDebit, CardCredit:
		return c, nil
	default:
		return "", errors.Errorf("unknown card type %q", s)
	}
}
