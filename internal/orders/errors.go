package orders

import "errors"

// Validation errors: rejected before any write.
var (
	ErrNoIdentity         = errors.New("customer identity missing")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidEmail       = errors.New("invalid contact email")
	ErrMissingDelivery    = errors.New("delivery details incomplete")
	ErrInvalidPayment     = errors.New("unknown payment method")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQty         = errors.New("quantity must be at least 1")
	ErrProductUnavailable = errors.New("product unavailable")
)

// State errors: the order exists but the request is not legal for it.
var (
	ErrUnknownStatus  = errors.New("unrecognized status")
	ErrTerminalStatus = errors.New("order is in a terminal status")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
)

// IsValidation reports whether err belongs to the validation taxonomy,
// i.e. it is safe to surface the reason string to the caller.
func IsValidation(err error) bool {
	for _, e := range []error{
		ErrNoIdentity, ErrInvalidPhone, ErrInvalidEmail, ErrMissingDelivery, ErrInvalidPayment,
		ErrEmptyCart, ErrInvalidQty, ErrProductUnavailable,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func IsStateError(err error) bool {
	return errors.Is(err, ErrUnknownStatus) ||
		errors.Is(err, ErrTerminalStatus) ||
		errors.Is(err, ErrStatusConflict)
}
