package errors

import (
	"errors"
)

var (
	ErrEmptyAuth      = errors.New("missing authorization")
	ErrTokenInvalid   = errors.New("invalid session token")
	ErrCartBusy       = errors.New("cart mutation already in flight")
	ErrItemNotFound   = errors.New("item is not in the cart")
	ErrCheckoutState  = errors.New("checkout is not in a submittable state")
	ErrOrderRejected  = errors.New("order was rejected by the order service")
	ErrAdminForbidden = errors.New("invalid admin key")
)
