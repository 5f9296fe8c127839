package controllers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"motormart/billing"
	"motormart/database"
	"motormart/utils"
)

// OrderRequest contains the data for order creation. The payment schedule is
// derived server-side from the vehicle price, never trusted from the client.
type OrderRequest struct {
	VehicleID      uint                  `form:"vehicle_id" binding:"required"`
	PaymentType    string                `form:"payment_type" binding:"required,oneof=full installments"`
	DepositPercent int                   `form:"deposit_percent"`
	PaymentPeriod  int                   `form:"payment_period"`
	Country        string                `form:"country"`
	State          string                `form:"state" binding:"required"`
	City           string                `form:"city"`
	Address        string                `form:"address" binding:"required"`
	ZipCode        string                `form:"zip_code" binding:"required"`
	Receipt        *multipart.FileHeader `form:"receipt"`
}

// CreateOrder places an order for a vehicle (User only)
func CreateOrder(c *gin.Context) {
	email, _ := c.Get("email")
	buyerEmail := fmt.Sprint(email)

	var request OrderRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var vehicle database.Vehicle
	if err := database.DB.First(&vehicle, request.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if vehicle.Status != database.VehicleStatusAvailable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vehicle is not available"})
		return
	}

	var plan billing.Plan
	if request.PaymentType == database.PaymentTypeFull {
		plan = billing.NewFullPlan(vehicle.Price)
	} else {
		var err error
		plan, err = billing.NewInstallmentPlan(vehicle.Price, request.DepositPercent, request.PaymentPeriod)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	country := request.Country
	if country == "" {
		country = "United States"
	}

	order := database.Order{
		VehicleID:          vehicle.ID,
		BuyerEmail:         buyerEmail,
		PaymentType:        request.PaymentType,
		DepositAmount:      plan.DepositAmount,
		MonthlyInstallment: plan.MonthlyInstallment,
		PaymentPeriod:      plan.PaymentPeriod,
		Status:             database.OrderStatusPending,
		Country:            country,
		State:              request.State,
		City:               request.City,
		Address:            request.Address,
		ZipCode:            request.ZipCode,
	}

	if request.Receipt != nil {
		path, err := utils.SaveUpload(c, request.Receipt, "receipts")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order.ReceiptPath = path
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating order"})
		return
	}

	// Reserve the vehicle in the same transaction
	if err := tx.Model(&vehicle).Update("status", database.VehicleStatusReserved).Error; err != nil {
		tx.Rollback()
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reserving vehicle"})
		return
	}

	relatedID := order.ID
	notification := database.Notification{
		UserEmail:   buyerEmail,
		Title:       "Order Placed Successfully",
		Message:     fmt.Sprintf("Your order for the %d %s %s has been placed and is pending deposit verification.", vehicle.Year, vehicle.Make, vehicle.Model),
		Type:        "order",
		RelatedID:   &relatedID,
		RelatedType: "order",
	}
	if err := tx.Create(&notification).Error; err != nil {
		tx.Rollback()
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating notification"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Order placed successfully",
		"order":     order,
		"reference": orderReference(order.ID),
	})
}

// GetOrders lists orders: all of them for admins, own orders for users
func GetOrders(c *gin.Context) {
	role, _ := c.Get("role")
	email, _ := c.Get("email")

	query := database.DB.Preload("Vehicle").Order("id DESC")
	if role != database.RoleAdmin {
		query = query.Where("buyer_email = ?", fmt.Sprint(email))
	}

	var orders []database.Order
	if err := query.Find(&orders).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// loadOrderScoped fetches an order and enforces that non-admin callers only
// see their own.
func loadOrderScoped(c *gin.Context, id string) (*database.Order, bool) {
	var order database.Order
	if err := database.DB.Preload("Vehicle").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return nil, false
	}

	role, _ := c.Get("role")
	email, _ := c.Get("email")
	if role != database.RoleAdmin && order.BuyerEmail != fmt.Sprint(email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return nil, false
	}
	return &order, true
}

// GetOrderByID returns an order with its installments and payment progress
func GetOrderByID(c *gin.Context) {
	order, ok := loadOrderScoped(c, c.Param("id"))
	if !ok {
		return
	}

	var payments []database.Payment
	if err := database.DB.Where("order_id = ?", order.ID).Order("month_number ASC").Find(&payments).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var price float64
	if order.Vehicle != nil {
		price = order.Vehicle.Price
	}
	eligibility := billing.ComputeEligibility(order, payments, price)

	c.JSON(http.StatusOK, gin.H{
		"order":       order,
		"payments":    payments,
		"eligibility": eligibility,
		"reference":   orderReference(order.ID),
	})
}

// UpdateOrderStatusRequest contains data for updating an order status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus moves an order along the verification lifecycle (Admin
// only). Transitions are forward-only and Shipping requires the verified-paid
// percentage to clear the threshold.
func UpdateOrderStatus(c *gin.Context) {
	orderIDStr := c.Param("id")
	orderID, err := strconv.ParseInt(orderIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var statusRequest UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&statusRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	var order database.Order
	if err := database.DB.Preload("Vehicle").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var payments []database.Payment
	if err := database.DB.Where("order_id = ? AND status = ?", order.ID, database.PaymentStatusVerified).Find(&payments).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var price float64
	if order.Vehicle != nil {
		price = order.Vehicle.Price
	}

	// The eligibility gate sees the order as already verified so a
	// Verified -> Shipping move counts the deposit.
	projected := order
	if statusRequest.Status == database.OrderStatusShipping {
		projected.Status = database.OrderStatusVerified
	}
	eligibility := billing.ComputeEligibility(&projected, payments, price)

	oldStatus := order.Status
	if err := billing.Transition(oldStatus, statusRequest.Status, eligibility); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	order.Status = statusRequest.Status
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating order status"})
		return
	}

	// Delivery completes the sale; rejection releases the vehicle
	if order.Vehicle != nil {
		switch statusRequest.Status {
		case database.OrderStatusDelivered:
			err = tx.Model(order.Vehicle).Update("status", database.VehicleStatusSold).Error
		case database.OrderStatusRejected:
			err = tx.Model(order.Vehicle).Update("status", database.VehicleStatusAvailable).Error
		}
		if err != nil {
			tx.Rollback()
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating vehicle status"})
			return
		}
	}

	var message string
	switch statusRequest.Status {
	case database.OrderStatusVerified:
		message = "Your deposit has been verified."
	case database.OrderStatusShipping:
		message = "Your vehicle is being prepared for shipping."
	case database.OrderStatusDelivered:
		message = "Your vehicle has been delivered. Your ownership certificate is ready."
	case database.OrderStatusRejected:
		message = "Your order has been rejected. Please contact support for details."
	default:
		message = "Your order status has been updated to " + statusRequest.Status
	}

	relatedID := order.ID
	notification := database.Notification{
		UserEmail:   order.BuyerEmail,
		Title:       "Order Status Updated",
		Message:     message,
		Type:        "order",
		RelatedID:   &relatedID,
		RelatedType: "order",
	}
	if err := tx.Create(&notification).Error; err != nil {
		tx.Rollback()
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating notification"})
		return
	}

	email, _ := c.Get("email")
	if err := recordAudit(tx, fmt.Sprint(email), "order_status", "order", int64(order.ID), oldStatus, statusRequest.Status); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}

// GetOrderCertificate returns the data the SPA needs to render the printable
// ownership certificate. Only delivered orders have one.
func GetOrderCertificate(c *gin.Context) {
	order, ok := loadOrderScoped(c, c.Param("id"))
	if !ok {
		return
	}

	if order.Status != database.OrderStatusDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Certificate is only available for delivered orders"})
		return
	}

	var payments []database.Payment
	if err := database.DB.Where("order_id = ?", order.ID).Find(&payments).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var price float64
	if order.Vehicle != nil {
		price = order.Vehicle.Price
	}
	eligibility := billing.ComputeEligibility(order, payments, price)

	c.JSON(http.StatusOK, gin.H{
		"reference":    orderReference(order.ID),
		"order":        order,
		"vehicle":      order.Vehicle,
		"buyer_email":  order.BuyerEmail,
		"total_paid":   eligibility.TotalPaid,
		"issued_at":    order.UpdatedAt,
		"payment_type": order.PaymentType,
	})
}

// orderReference formats the human-facing order reference
func orderReference(orderID uint) string {
	return fmt.Sprintf("#EB-%04d", orderID)
}
