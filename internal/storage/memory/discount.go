// Package memory provides an in-process discount.Repository.
package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/xenking/kart-pricing/internal/domain/discount"
)

const codeIndexFPR = 0.001

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository serves a fixed discount catalog from memory. It is
// immutable after construction and safe for concurrent use.
type DiscountRepository struct {
	defs   []discount.Definition
	byCode map[string]int
	codes  *bloom.BloomFilter
	now    func() time.Time
}

// NewDiscountRepository indexes defs by lookup code. When two definitions
// share a code (case-insensitively) the first one wins.
func NewDiscountRepository(defs []discount.Definition) *DiscountRepository {
	r := &DiscountRepository{
		defs:   slices.Clone(defs),
		byCode: make(map[string]int, len(defs)),
		codes:  bloom.NewWithEstimates(uint(max(len(defs), 1)), codeIndexFPR),
		now:    time.Now,
	}
	for i, def := range r.defs {
		key := normalizeCode(def.LookupCode())
		if _, ok := r.byCode[key]; ok {
			continue
		}
		r.byCode[key] = i
		r.codes.AddString(key)
	}
	return r
}

// ListActive returns unexpired definitions whose type is not excluded, in
// catalog order.
func (r *DiscountRepository) ListActive(ctx context.Context, exclude ...discount.Type) ([]discount.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := r.now()
	out := make([]discount.Definition, 0, len(r.defs))
	for _, def := range r.defs {
		if def.ExpiredAt(now) || slices.Contains(exclude, def.Type) {
			continue
		}
		out = append(out, def)
	}
	return out, nil
}

// FindByCode looks up a definition by code, ignoring case. Expired entries
// are returned as well. Returns discount.ErrDiscountNotFound when absent.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := normalizeCode(code)
	if !r.codes.TestString(key) {
		return nil, discount.ErrDiscountNotFound
	}
	i, ok := r.byCode[key]
	if !ok {
		return nil, discount.ErrDiscountNotFound
	}
	def := r.defs[i]
	return &def, nil
}

// Len returns the number of definitions held, expired ones included.
func (r *DiscountRepository) Len() int {
	return len(r.defs)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
