package billing

import (
	"fmt"

	"motormart/database"
)

// allowedTransitions is the forward order-status graph. Delivered and
// Rejected are terminal.
var allowedTransitions = map[string][]string{
	database.OrderStatusPending:   {database.OrderStatusVerified, database.OrderStatusRejected},
	database.OrderStatusVerified:  {database.OrderStatusShipping},
	database.OrderStatusShipping:  {database.OrderStatusDelivered},
	database.OrderStatusDelivered: {},
	database.OrderStatusRejected:  {},
}

// KnownOrderStatus reports whether s is one of the recognized order statuses
func KnownOrderStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is an allowed status change.
// Setting the same status again is a no-op and always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to, including the eligibility gate on entering
// Shipping, and returns an error describing the violated rule.
func Transition(from, to string, eligibility Eligibility) error {
	if !KnownOrderStatus(to) {
		return fmt.Errorf("unknown order status: %q", to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid order status transition: %s -> %s", from, to)
	}
	if to == database.OrderStatusShipping && from != to && !eligibility.Eligible {
		return fmt.Errorf("order is at %d%% verified payment, below the %d%% shipping threshold",
			eligibility.Percentage, ShippingThreshold)
	}
	return nil
}
