package discount

import (
	"cmp"
	"slices"
	"strings"

	"github.com/go-faster/errors"
)

// Strategy picks which candidate discounts apply and in what order. The
// returned slice is both the applied set and the application sequence.
// Candidates are not rule-checked here; Resolve must not modify its input.
type Strategy interface {
	Resolve(candidates []Definition) []Definition
}

// Strategy names accepted by NewStrategy.
const (
	StrategyExpiringFirst = "expiring-first"
	StrategyStackAll      = "stack-all"
)

// NewStrategy returns the strategy registered under name.
func NewStrategy(name string, ordering []Type) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyExpiringFirst:
		return NewExpiringFirst(ordering), nil
	case StrategyStackAll:
		return NewStackAll(ordering), nil
	default:
		return nil, errors.Errorf("unknown discount strategy %q", name)
	}
}

// ExpiringFirst keeps at most one discount per type. When several compete
// for a type, the one expiring soonest wins. Survivors are applied in the
// configured type order.
type ExpiringFirst struct {
	order typeOrder
}

// NewExpiringFirst returns the default strategy for the given type ordering.
func NewExpiringFirst(ordering []Type) *ExpiringFirst {
	return &ExpiringFirst{order: newTypeOrder(ordering)}
}

// Resolve implements Strategy.
func (s *ExpiringFirst) Resolve(candidates []Definition) []Definition {
	sorted := byExpiry(candidates)

	claimed := make(map[Type]struct{}, len(sorted))
	resolved := make([]Definition, 0, len(sorted))
	for _, d := range sorted {
		if _, ok := claimed[d.Type]; ok {
			continue
		}
		claimed[d.Type] = struct{}{}
		resolved = append(resolved, d)
	}

	s.order.sort(resolved)
	return resolved
}

// StackAll applies every candidate, ordered by type and then by expiry.
type StackAll struct {
	order typeOrder
}

// NewStackAll returns a strategy without the one-per-type limit.
func NewStackAll(ordering []Type) *StackAll {
	return &StackAll{order: newTypeOrder(ordering)}
}

// Resolve implements Strategy.
func (s *StackAll) Resolve(candidates []Definition) []Definition {
	resolved := byExpiry(candidates)
	s.order.sort(resolved)
	return resolved
}

// byExpiry returns a copy of candidates stably sorted soonest-expiring first.
func byExpiry(candidates []Definition) []Definition {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b Definition) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	return sorted
}

// typeOrder ranks types by their position in the configured ordering. Types
// missing from the ordering rank after all listed ones.
type typeOrder map[Type]int

func newTypeOrder(ordering []Type) typeOrder {
	o := make(typeOrder, len(ordering))
	for i, t := range ordering {
		if _, ok := o[t]; !ok {
			o[t] = i
		}
	}
	return o
}

func (o typeOrder) rank(t Type) int {
	if r, ok := o[t]; ok {
		return r
	}
	return len(o)
}

func (o typeOrder) sort(defs []Definition) {
	slices.SortStableFunc(defs, func(a, b Definition) int {
		return cmp.Compare(o.rank(a.Type), o.rank(b.Type))
	})
}
