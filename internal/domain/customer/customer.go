package customer

import (
	"strings"

	"github.com/go-faster/errors"
)

// Tier is a loyalty tier. Gold ranks above silver above bronze, but rules
// only compare tiers for membership.
type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
)

// Profile is the read-only view of a customer used for rule evaluation.
type Profile struct {
	ID    string
	Name  string
	Tier  Tier
	Email string
	Phone string
}

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierGold, TierSilver, TierBronze:
		return t, nil
	default:
		return "", errors.Errorf("unknown customer tier %q", s)
	}
}
