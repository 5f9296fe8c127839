package billing

import (
	"math"

	"motormart/database"
)

// ShippingThreshold is the verified-paid percentage of the vehicle price an
// order must reach before it may move to Shipping.
const ShippingThreshold = 60

// Eligibility is the derived payment progress for an order
type Eligibility struct {
	TotalPaid    float64 `json:"total_paid"`
	TotalPending float64 `json:"total_pending"`
	Percentage   int     `json:"percentage"`
	Eligible     bool    `json:"eligible"`
}

// depositCounted reports whether the deposit counts as verified-paid for the
// given order status.
func depositCounted(status string) bool {
	switch status {
	case database.OrderStatusVerified, database.OrderStatusShipping, database.OrderStatusDelivered:
		return true
	}
	return false
}

// ComputeEligibility recomputes payment progress from the order, its
// installments and the vehicle price. Pure and stateless; called on every
// read.
func ComputeEligibility(order *database.Order, payments []database.Payment, price float64) Eligibility {
	var e Eligibility

	if depositCounted(order.Status) {
		e.TotalPaid += order.DepositAmount
	} else if order.Status == database.OrderStatusPending {
		e.TotalPending += order.DepositAmount
	}

	for _, p := range payments {
		switch p.Status {
		case database.PaymentStatusVerified:
			e.TotalPaid += p.Amount
		case database.PaymentStatusPending:
			e.TotalPending += p.Amount
		}
	}

	if price > 0 {
		pct := int(math.Round(e.TotalPaid / price * 100))
		if pct > 100 {
			pct = 100
		}
		e.Percentage = pct
	}

	e.Eligible = e.Percentage >= ShippingThreshold
	return e
}
