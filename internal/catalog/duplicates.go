package catalog

import (
	"slices"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/xenking/kart-pricing/internal/domain/discount"
)

const duplicateFPR = 0.001

// Duplicates returns the lookup codes that occur more than once across the
// given catalogs, compared case-insensitively and sorted.
//
// Every code is first tested against a bloom filter of the codes seen so far.
// Only filter hits are counted exactly, so the exact pass stays small for
// large catalogs without duplicates.
func Duplicates(catalogs ...[]discount.Definition) []string {
	total := 0
	for _, defs := range catalogs {
		total += len(defs)
	}
	if total == 0 {
		return nil
	}

	filter := bloom.NewWithEstimates(uint(total), duplicateFPR)
	candidates := make(map[string]int)
	for _, defs := range catalogs {
		for _, def := range defs {
			code := strings.ToUpper(def.LookupCode())
			if filter.TestOrAddString(code) {
				candidates[code] = 0
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	for _, defs := range catalogs {
		for _, def := range defs {
			code := strings.ToUpper(def.LookupCode())
			if _, ok := candidates[code]; ok {
				candidates[code]++
			}
		}
	}

	var dups []string
	for code, n := range candidates {
		if n > 1 {
			dups = append(dups, code)
		}
	}
	slices.Sort(dups)
	return dups
}
