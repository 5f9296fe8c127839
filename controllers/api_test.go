package controllers_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motormart/config"
	"motormart/database"
)

func TestAuthAPIRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "Jane Buyer",
		"email":    "jane@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeMap(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	// Registration leaves a welcome notification
	w = doRequest(t, r, http.MethodGet, "/api/notifications", nil, "", token)
	requireOK(t, w)
	notifications := decodeList(t, w)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Welcome to MotorMart", notifications[0]["title"])

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "jane@example.com",
		"password": "secret123",
	}, "")
	requireOK(t, w)
	assert.NotEmpty(t, decodeMap(t, w)["token"])

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "jane@example.com",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/auth/refresh", nil, "", token)
	requireOK(t, w)
	assert.NotEmpty(t, decodeMap(t, w)["token"])

	w = doRequest(t, r, http.MethodGet, "/api/profile", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	r := newTestRouter(t)
	_, token := createTestUser(t, "jane@example.com", database.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/api/profile/change-password", map[string]any{
		"current_password": "wrong",
		"new_password":     "changed456",
	}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/profile/change-password", map[string]any{
		"current_password": "password123",
		"new_password":     "changed456",
	}, token)
	requireOK(t, w)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "jane@example.com",
		"password": "changed456",
	}, "")
	requireOK(t, w)
}

func TestOrderLifecycle(t *testing.T) {
	r := newTestRouter(t)
	_, adminToken := createTestUser(t, "admin@example.com", database.RoleAdmin)
	buyer, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)
	vehicle := seedVehicle(t, 50000)

	// The schedule is derived server-side from the vehicle price
	w := doForm(t, r, http.MethodPost, "/api/orders", map[string]string{
		"vehicle_id":      strconv.Itoa(int(vehicle.ID)),
		"payment_type":    database.PaymentTypeInstallments,
		"deposit_percent": "25",
		"payment_period":  "12",
		"state":           "California",
		"address":         "1 Main St",
		"zip_code":        "94016",
	}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeMap(t, w)
	assert.Equal(t, "#EB-0001", body["reference"])

	order, ok := body["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 12500.0, order["deposit_amount"])
	assert.Equal(t, 3125.0, order["monthly_installment"])
	assert.Equal(t, database.OrderStatusPending, order["status"])
	assert.Equal(t, buyer.Email, order["buyer_email"])

	// Placing the order reserves the vehicle
	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/vehicles/%d", vehicle.ID), nil, "", "")
	requireOK(t, w)
	got := decodeMap(t, w)["vehicle"].(map[string]any)
	assert.Equal(t, database.VehicleStatusReserved, got["status"])

	orderPath := "/api/orders/1/status"

	// Shipping straight from pending is not a legal move
	w = doJSON(t, r, http.MethodPut, orderPath, map[string]any{"status": database.OrderStatusShipping}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPut, orderPath, map[string]any{"status": database.OrderStatusVerified}, adminToken)
	requireOK(t, w)

	// 25% verified is below the shipping threshold
	w = doJSON(t, r, http.MethodPut, orderPath, map[string]any{"status": database.OrderStatusShipping}, adminToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w)["error"], "threshold")

	// Two 10k installments bring the verified total to 65%
	for month := 1; month <= 2; month++ {
		w = doForm(t, r, http.MethodPost, "/api/payments", map[string]string{
			"order_id":     "1",
			"amount":       "10000",
			"month_number": strconv.Itoa(month),
		}, buyerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		paymentID := int(decodeMap(t, w)["payment"].(map[string]any)["ID"].(float64))
		w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/payments/%d/verify", paymentID),
			map[string]any{"status": database.PaymentStatusVerified}, adminToken)
		requireOK(t, w)
	}

	w = doRequest(t, r, http.MethodGet, "/api/orders/1", nil, "", buyerToken)
	requireOK(t, w)
	eligibility := decodeMap(t, w)["eligibility"].(map[string]any)
	assert.Equal(t, 65.0, eligibility["percentage"])
	assert.Equal(t, true, eligibility["eligible"])

	w = doJSON(t, r, http.MethodPut, orderPath, map[string]any{"status": database.OrderStatusShipping}, adminToken)
	requireOK(t, w)

	// The certificate only exists once delivered
	w = doRequest(t, r, http.MethodGet, "/api/orders/1/certificate", nil, "", buyerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, orderPath, map[string]any{"status": database.OrderStatusDelivered}, adminToken)
	requireOK(t, w)

	var updated database.Vehicle
	require.NoError(t, database.DB.First(&updated, vehicle.ID).Error)
	assert.Equal(t, database.VehicleStatusSold, updated.Status)

	w = doRequest(t, r, http.MethodGet, "/api/orders/1/certificate", nil, "", buyerToken)
	requireOK(t, w)
	certificate := decodeMap(t, w)
	assert.Equal(t, "#EB-0001", certificate["reference"])
	assert.Equal(t, 32500.0, certificate["total_paid"])

	// Delivered is terminal
	w = doJSON(t, r, http.MethodPut, orderPath, map[string]any{"status": database.OrderStatusVerified}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderAccessControl(t *testing.T) {
	r := newTestRouter(t)
	_, adminToken := createTestUser(t, "admin@example.com", database.RoleAdmin)
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)
	_, otherToken := createTestUser(t, "mark@example.com", database.RoleUser)
	vehicle := seedVehicle(t, 40000)

	w := doForm(t, r, http.MethodPost, "/api/orders", map[string]string{
		"vehicle_id":   strconv.Itoa(int(vehicle.ID)),
		"payment_type": database.PaymentTypeFull,
		"state":        "Texas",
		"address":      "2 Oak Ave",
		"zip_code":     "73301",
	}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Buyers cannot read someone else's order
	w = doRequest(t, r, http.MethodGet, "/api/orders/1", nil, "", otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/orders/1", nil, "", adminToken)
	requireOK(t, w)

	// Status changes are admin only
	w = doJSON(t, r, http.MethodPut, "/api/orders/1/status", map[string]any{"status": database.OrderStatusVerified}, buyerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Order listing is scoped by role
	w = doRequest(t, r, http.MethodGet, "/api/orders", nil, "", otherToken)
	requireOK(t, w)
	assert.Empty(t, decodeList(t, w))

	w = doRequest(t, r, http.MethodGet, "/api/orders", nil, "", adminToken)
	requireOK(t, w)
	assert.Len(t, decodeList(t, w), 1)

	// Admins place no orders
	w = doForm(t, r, http.MethodPost, "/api/orders", map[string]string{
		"vehicle_id":   strconv.Itoa(int(vehicle.ID)),
		"payment_type": database.PaymentTypeFull,
		"state":        "Texas",
		"address":      "2 Oak Ave",
		"zip_code":     "73301",
	}, adminToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	r := newTestRouter(t)
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)
	vehicle := seedVehicle(t, 50000)

	// Unknown deposit percent
	w := doForm(t, r, http.MethodPost, "/api/orders", map[string]string{
		"vehicle_id":      strconv.Itoa(int(vehicle.ID)),
		"payment_type":    database.PaymentTypeInstallments,
		"deposit_percent": "30",
		"payment_period":  "12",
		"state":           "California",
		"address":         "1 Main St",
		"zip_code":        "94016",
	}, buyerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Reserved vehicles cannot be ordered
	require.NoError(t, database.DB.Model(&vehicle).Update("status", database.VehicleStatusReserved).Error)
	w = doForm(t, r, http.MethodPost, "/api/orders", map[string]string{
		"vehicle_id":   strconv.Itoa(int(vehicle.ID)),
		"payment_type": database.PaymentTypeFull,
		"state":        "California",
		"address":      "1 Main St",
		"zip_code":     "94016",
	}, buyerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doForm(t, r, http.MethodPost, "/api/orders", map[string]string{
		"vehicle_id":   "999",
		"payment_type": database.PaymentTypeFull,
		"state":        "California",
		"address":      "1 Main St",
		"zip_code":     "94016",
	}, buyerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyPaymentRejectsDoubleVerdict(t *testing.T) {
	r := newTestRouter(t)
	_, adminToken := createTestUser(t, "admin@example.com", database.RoleAdmin)
	vehicle := seedVehicle(t, 50000)

	order := database.Order{
		VehicleID:          vehicle.ID,
		BuyerEmail:         "jane@example.com",
		PaymentType:        database.PaymentTypeInstallments,
		DepositAmount:      12500,
		MonthlyInstallment: 3125,
		PaymentPeriod:      12,
		Status:             database.OrderStatusVerified,
	}
	require.NoError(t, database.DB.Create(&order).Error)

	payment := database.Payment{OrderID: order.ID, Amount: 3125, MonthNumber: 1, Status: database.PaymentStatusPending}
	require.NoError(t, database.DB.Create(&payment).Error)

	path := fmt.Sprintf("/api/payments/%d/verify", payment.ID)

	w := doJSON(t, r, http.MethodPut, path, map[string]any{"status": "Paid"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, path, map[string]any{"status": database.PaymentStatusVerified}, adminToken)
	requireOK(t, w)

	w = doJSON(t, r, http.MethodPut, path, map[string]any{"status": database.PaymentStatusRejected}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePaymentRequiresInstallmentOrder(t *testing.T) {
	r := newTestRouter(t)
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)
	vehicle := seedVehicle(t, 40000)

	order := database.Order{
		VehicleID:     vehicle.ID,
		BuyerEmail:    "jane@example.com",
		PaymentType:   database.PaymentTypeFull,
		DepositAmount: 40000,
		Status:        database.OrderStatusVerified,
	}
	require.NoError(t, database.DB.Create(&order).Error)

	w := doForm(t, r, http.MethodPost, "/api/payments", map[string]string{
		"order_id":     "1",
		"month_number": "1",
	}, buyerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePaymentDefaultsToMonthlyInstallment(t *testing.T) {
	r := newTestRouter(t)
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)
	vehicle := seedVehicle(t, 50000)

	order := database.Order{
		VehicleID:          vehicle.ID,
		BuyerEmail:         "jane@example.com",
		PaymentType:        database.PaymentTypeInstallments,
		DepositAmount:      12500,
		MonthlyInstallment: 3125,
		PaymentPeriod:      12,
		Status:             database.OrderStatusVerified,
	}
	require.NoError(t, database.DB.Create(&order).Error)

	w := doForm(t, r, http.MethodPost, "/api/payments", map[string]string{
		"order_id":     "1",
		"month_number": "1",
	}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeMap(t, w)
	assert.Equal(t, "#PL-0001 (Ord #1)", body["reference"])
	payment := body["payment"].(map[string]any)
	assert.Equal(t, 3125.0, payment["amount"])
	assert.Equal(t, database.PaymentStatusPending, payment["status"])
}

func TestVerifyGatewayPayment(t *testing.T) {
	r := newTestRouter(t)
	config.AppConfig.RazorpaySecret = "test_gateway_secret"
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)
	vehicle := seedVehicle(t, 50000)

	order := database.Order{
		VehicleID:     vehicle.ID,
		BuyerEmail:    "jane@example.com",
		PaymentType:   database.PaymentTypeFull,
		DepositAmount: 50000,
		Status:        database.OrderStatusPending,
	}
	require.NoError(t, database.DB.Create(&order).Error)

	mac := hmac.New(sha256.New, []byte("test_gateway_secret"))
	mac.Write([]byte("order_gw_123|pay_gw_456"))
	signature := hex.EncodeToString(mac.Sum(nil))

	w := doJSON(t, r, http.MethodPost, "/api/payments/gateway/verify", map[string]any{
		"payment_id":       "pay_gw_456",
		"gateway_order_id": "order_gw_123",
		"signature":        "deadbeef",
		"order_id":         order.ID,
	}, buyerToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid payment signature", decodeMap(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/api/payments/gateway/verify", map[string]any{
		"payment_id":       "pay_gw_456",
		"gateway_order_id": "order_gw_123",
		"signature":        signature,
		"order_id":         order.ID,
	}, buyerToken)
	requireOK(t, w)

	var updated database.Order
	require.NoError(t, database.DB.First(&updated, order.ID).Error)
	assert.Equal(t, database.OrderStatusVerified, updated.Status)
}

func TestWishlistAPI(t *testing.T) {
	r := newTestRouter(t)
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)
	vehicle := seedVehicle(t, 30000)

	w := doJSON(t, r, http.MethodPost, "/api/wishlist/toggle", map[string]any{"vehicle_id": vehicle.ID}, buyerToken)
	requireOK(t, w)
	assert.Equal(t, true, decodeMap(t, w)["wishlisted"])

	w = doRequest(t, r, http.MethodGet, "/api/wishlist", nil, "", buyerToken)
	requireOK(t, w)
	assert.Len(t, decodeList(t, w), 1)

	w = doJSON(t, r, http.MethodPost, "/api/wishlist/toggle", map[string]any{"vehicle_id": vehicle.ID}, buyerToken)
	requireOK(t, w)
	assert.Equal(t, false, decodeMap(t, w)["wishlisted"])

	w = doRequest(t, r, http.MethodGet, "/api/wishlist", nil, "", buyerToken)
	requireOK(t, w)
	assert.Empty(t, decodeList(t, w))

	w = doJSON(t, r, http.MethodPost, "/api/wishlist/toggle", map[string]any{"vehicle_id": 999}, buyerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVehicleAdminAPI(t *testing.T) {
	r := newTestRouter(t)
	_, adminToken := createTestUser(t, "admin@example.com", database.RoleAdmin)
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)

	w := doMultipart(t, r, http.MethodPost, "/api/admin/vehicles", map[string]string{
		"make":    "Ford",
		"model":   "Mustang",
		"year":    "2023",
		"price":   "45000",
		"vin":     "1FA6P8TH4P5000005",
		"mileage": "100",
	}, map[string][]string{
		"images": {"front.jpg", "rear.jpg"},
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeMap(t, w)
	assert.Equal(t, database.VehicleStatusAvailable, created["status"])

	// Creation is admin only
	w = doMultipart(t, r, http.MethodPost, "/api/admin/vehicles", map[string]string{
		"make": "Kia", "model": "Rio", "year": "2020", "price": "15000", "vin": "X",
	}, nil, buyerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/vehicles/1", nil, "", "")
	requireOK(t, w)
	body := decodeMap(t, w)
	gallery, ok := body["gallery"].([]any)
	require.True(t, ok)
	assert.Len(t, gallery, 2)

	w = doJSON(t, r, http.MethodPatch, "/api/vehicles/1/status", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code) // admin routes live under /api/admin

	w = doJSON(t, r, http.MethodPatch, "/api/admin/vehicles/1/status", map[string]any{"status": database.VehicleStatusInTransit}, adminToken)
	requireOK(t, w)
	assert.Equal(t, database.VehicleStatusInTransit, decodeMap(t, w)["status"])

	w = doJSON(t, r, http.MethodPatch, "/api/admin/vehicles/1/status", map[string]any{"status": "exploded"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/api/admin/vehicles/1", nil, "", adminToken)
	requireOK(t, w)

	w = doRequest(t, r, http.MethodGet, "/api/vehicles/1", nil, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Deleting a vehicle leaves an audit trail
	var logs []database.AuditLog
	require.NoError(t, database.DB.Where("action = ?", "vehicle_delete").Find(&logs).Error)
	assert.Len(t, logs, 1)
}

func TestAdminDashboardAndTransactions(t *testing.T) {
	r := newTestRouter(t)
	_, adminToken := createTestUser(t, "admin@example.com", database.RoleAdmin)
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)
	vehicle := seedVehicle(t, 30000)

	order := database.Order{
		VehicleID:     vehicle.ID,
		BuyerEmail:    "jane@example.com",
		PaymentType:   database.PaymentTypeFull,
		DepositAmount: 30000,
		Status:        database.OrderStatusDelivered,
	}
	require.NoError(t, database.DB.Create(&order).Error)
	require.NoError(t, database.DB.Model(&vehicle).Update("status", database.VehicleStatusSold).Error)

	w := doRequest(t, r, http.MethodGet, "/api/admin/dashboard", nil, "", adminToken)
	requireOK(t, w)
	dashboard := decodeMap(t, w)
	assert.Equal(t, 1.0, dashboard["total_vehicles"])
	assert.Equal(t, 0.0, dashboard["available_vehicles"])
	assert.Equal(t, 1.0, dashboard["total_orders"])
	assert.Equal(t, 30000.0, dashboard["total_revenue"])

	w = doRequest(t, r, http.MethodGet, "/api/admin/transactions", nil, "", adminToken)
	requireOK(t, w)
	transactions := decodeList(t, w)
	require.Len(t, transactions, 1)
	assert.Equal(t, "#EB-0001", transactions[0]["reference"])

	// Admin surfaces are off limits for buyers
	w = doRequest(t, r, http.MethodGet, "/api/admin/dashboard", nil, "", buyerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNotificationMarkRead(t *testing.T) {
	r := newTestRouter(t)
	_, buyerToken := createTestUser(t, "jane@example.com", database.RoleUser)

	notification := database.Notification{
		UserEmail: "jane@example.com",
		Title:     "Order Status Updated",
		Message:   "Your deposit has been verified.",
		Type:      "order",
	}
	require.NoError(t, database.DB.Create(&notification).Error)

	w := doRequest(t, r, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", notification.ID), nil, "", buyerToken)
	requireOK(t, w)

	var updated database.Notification
	require.NoError(t, database.DB.First(&updated, notification.ID).Error)
	assert.True(t, updated.IsRead)

	// Other users' notifications are unreachable
	_, otherToken := createTestUser(t, "mark@example.com", database.RoleUser)
	w = doRequest(t, r, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", notification.ID), nil, "", otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
