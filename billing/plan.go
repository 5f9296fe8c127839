// Package billing holds the order/payment rules: installment plan derivation,
// the shipping-eligibility computation, and the order status transition graph.
package billing

import "fmt"

// DepositPercents are the upfront fractions offered for installment plans
var DepositPercents = []int{25, 45}

// PaymentPeriods are the installment durations offered, in months
var PaymentPeriods = []int{6, 12, 18, 24}

// Plan is the derived payment schedule for an order
type Plan struct {
	DepositAmount      float64 `json:"deposit_amount"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	PaymentPeriod      int     `json:"payment_period"`
}

// NewFullPlan returns the plan for a full upfront purchase
func NewFullPlan(price float64) Plan {
	return Plan{DepositAmount: price}
}

// NewInstallmentPlan derives the schedule for an installment purchase:
// deposit = price * percent / 100, monthly = (price - deposit) / period.
func NewInstallmentPlan(price float64, depositPercent, period int) (Plan, error) {
	if !containsInt(DepositPercents, depositPercent) {
		return Plan{}, fmt.Errorf("unsupported deposit percent: %d", depositPercent)
	}
	if !containsInt(PaymentPeriods, period) {
		return Plan{}, fmt.Errorf("unsupported payment period: %d", period)
	}

	deposit := price * float64(depositPercent) / 100
	return Plan{
		DepositAmount:      deposit,
		MonthlyInstallment: (price - deposit) / float64(period),
		PaymentPeriod:      period,
	}, nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
