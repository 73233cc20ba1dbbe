package discount

import "github.com/go-faster/errors"

var (
	// ErrDiscountNotFound is returned when a discount code resolves to no
	// catalog entry.
	ErrDiscountNotFound = errors.New("discount not found")
	// ErrDiscountExpired is returned when a discount code resolves to an entry
	// whose expiry has passed.
	ErrDiscountExpired = errors.New("discount expired")
)
