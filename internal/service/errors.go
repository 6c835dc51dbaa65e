package service

import "errors"

// Storage keys. The persisted shapes are the contract, the names are ours.
const (
	KeyCart            = "cart"
	KeyOrders          = "orders"
	KeyFavorites       = "favorites"
	KeyShippingProfile = "shipping_profile"
	KeyRedirectTarget  = "redirect_target"
)

// ValidationError reports an operation rejected before any persistence
// mutation was attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ErrUnauthorized marks an entity that exists but belongs to a different
// user. Callers must present this differently from a plain not-found.
var ErrUnauthorized = errors.New("entity does not belong to the current user")
