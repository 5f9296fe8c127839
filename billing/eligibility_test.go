package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"motormart/database"
)

func verifiedPayment(amount float64) database.Payment {
	return database.Payment{Amount: amount, Status: database.PaymentStatusVerified}
}

func pendingPayment(amount float64) database.Payment {
	return database.Payment{Amount: amount, Status: database.PaymentStatusPending}
}

func TestComputeEligibility(t *testing.T) {
	// $50,000 vehicle on the 25% deposit plan.
	order := &database.Order{
		DepositAmount: 12500,
		Status:        database.OrderStatusVerified,
	}

	t.Run("deposit plus one installment is below threshold", func(t *testing.T) {
		e := ComputeEligibility(order, []database.Payment{verifiedPayment(10000)}, 50000)
		assert.Equal(t, 22500.0, e.TotalPaid)
		assert.Equal(t, 45, e.Percentage)
		assert.False(t, e.Eligible)
	})

	t.Run("three more installments crosses the threshold", func(t *testing.T) {
		e := ComputeEligibility(order, []database.Payment{
			verifiedPayment(10000),
			verifiedPayment(10000),
			verifiedPayment(5000),
			verifiedPayment(5000),
		}, 50000)
		assert.Equal(t, 42500.0, e.TotalPaid)
		assert.Equal(t, 85, e.Percentage)
		assert.True(t, e.Eligible)
	})

	t.Run("pending installments do not count as paid", func(t *testing.T) {
		e := ComputeEligibility(order, []database.Payment{
			verifiedPayment(10000),
			pendingPayment(20000),
		}, 50000)
		assert.Equal(t, 22500.0, e.TotalPaid)
		assert.Equal(t, 20000.0, e.TotalPending)
		assert.Equal(t, 45, e.Percentage)
	})

	t.Run("percentage is clamped at 100", func(t *testing.T) {
		e := ComputeEligibility(order, []database.Payment{verifiedPayment(60000)}, 50000)
		assert.Equal(t, 100, e.Percentage)
		assert.True(t, e.Eligible)
	})
}

func TestComputeEligibilityDepositByStatus(t *testing.T) {
	tests := []struct {
		status      string
		wantPaid    float64
		wantPending float64
	}{
		{database.OrderStatusPending, 0, 12500},
		{database.OrderStatusVerified, 12500, 0},
		{database.OrderStatusShipping, 12500, 0},
		{database.OrderStatusDelivered, 12500, 0},
		{database.OrderStatusRejected, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			order := &database.Order{DepositAmount: 12500, Status: tt.status}
			e := ComputeEligibility(order, nil, 50000)
			assert.Equal(t, tt.wantPaid, e.TotalPaid)
			assert.Equal(t, tt.wantPending, e.TotalPending)
		})
	}
}

func TestComputeEligibilityZeroPrice(t *testing.T) {
	order := &database.Order{DepositAmount: 12500, Status: database.OrderStatusVerified}
	e := ComputeEligibility(order, nil, 0)
	assert.Zero(t, e.Percentage)
	assert.False(t, e.Eligible)
}

func TestEligibilityMonotonic(t *testing.T) {
	order := &database.Order{DepositAmount: 12500, Status: database.OrderStatusVerified}

	var payments []database.Payment
	prev := 0
	for i := 0; i < 10; i++ {
		payments = append(payments, verifiedPayment(5000))
		e := ComputeEligibility(order, payments, 50000)
		assert.GreaterOrEqual(t, e.Percentage, prev)
		assert.LessOrEqual(t, e.Percentage, 100)
		prev = e.Percentage
	}
}
