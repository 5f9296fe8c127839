package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/razorpay/razorpay-go"
	"gorm.io/gorm"

	"motormart/billing"
	"motormart/config"
	"motormart/database"
	"motormart/utils"
)

// PaymentRequest contains data for submitting a monthly installment receipt
type PaymentRequest struct {
	OrderID     uint                  `form:"order_id" binding:"required"`
	Amount      float64               `form:"amount"`
	MonthNumber int                   `form:"month_number"`
	Receipt     *multipart.FileHeader `form:"receipt"`
}

// CreatePayment records a buyer-submitted installment receipt (User only)
func CreatePayment(c *gin.Context) {
	email, _ := c.Get("email")
	buyerEmail := fmt.Sprint(email)

	var request PaymentRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order database.Order
	if err := database.DB.Where("id = ? AND buyer_email = ?", request.OrderID, buyerEmail).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found or doesn't belong to you"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if order.PaymentType != database.PaymentTypeInstallments {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Installments can only be submitted for installment orders"})
		return
	}

	amount := request.Amount
	if amount == 0 {
		amount = order.MonthlyInstallment
	}

	payment := database.Payment{
		OrderID:     order.ID,
		Amount:      amount,
		MonthNumber: request.MonthNumber,
		Status:      database.PaymentStatusPending,
	}

	if request.Receipt != nil {
		path, err := utils.SaveUpload(c, request.Receipt, "receipts")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		payment.ReceiptPath = path
	}

	if err := database.DB.Create(&payment).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error recording payment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Payment receipt uploaded",
		"payment":   payment,
		"reference": paymentReference(payment.ID, order.ID),
	})
}

// VerifyPaymentRequest contains the admin verdict for an installment
type VerifyPaymentRequest struct {
	Status string `json:"status" binding:"required,oneof='Verified' 'Rejected'"`
}

// VerifyPayment records the admin verdict on a submitted installment (Admin only)
func VerifyPayment(c *gin.Context) {
	paymentIDStr := c.Param("id")
	paymentID, err := strconv.ParseInt(paymentIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var request VerifyPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	var payment database.Payment
	if err := database.DB.Preload("Order").First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if payment.Status != database.PaymentStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment has already been " + payment.Status})
		return
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	oldStatus := payment.Status
	payment.Status = request.Status
	if err := tx.Save(&payment).Error; err != nil {
		tx.Rollback()
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating payment"})
		return
	}

	if payment.Order != nil {
		var message string
		if request.Status == database.PaymentStatusVerified {
			message = fmt.Sprintf("Your month %d installment of $%.2f has been verified.", payment.MonthNumber, payment.Amount)
		} else {
			message = fmt.Sprintf("Your month %d installment was rejected. Please re-submit the receipt.", payment.MonthNumber)
		}
		relatedID := payment.ID
		notification := database.Notification{
			UserEmail:   payment.Order.BuyerEmail,
			Title:       "Installment " + request.Status,
			Message:     message,
			Type:        "payment",
			RelatedID:   &relatedID,
			RelatedType: "payment",
		}
		if err := tx.Create(&notification).Error; err != nil {
			tx.Rollback()
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating notification"})
			return
		}
	}

	email, _ := c.Get("email")
	if err := recordAudit(tx, fmt.Sprint(email), "payment_status", "payment", int64(payment.ID), oldStatus, request.Status); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment status updated successfully", "payment": payment})
}

// GatewayOrderRequest contains data for creating a gateway deposit order
type GatewayOrderRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// GenerateGatewayOrder creates a Razorpay order for the deposit of a pending
// order, as an alternative to uploading a bank receipt (User only).
func GenerateGatewayOrder(c *gin.Context) {
	email, _ := c.Get("email")

	var request GatewayOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	var order database.Order
	result := database.DB.Where("id = ? AND buyer_email = ?", request.OrderID, fmt.Sprint(email)).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found or doesn't belong to you"})
			return
		}
		log.Printf("Database error: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if order.Status != database.OrderStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment can only be generated for pending orders"})
		return
	}

	client := razorpay.NewClient(config.AppConfig.RazorpayKey, config.AppConfig.RazorpaySecret)

	// Amount in the smallest currency unit
	amountInCents := int64(order.DepositAmount * 100)

	data := map[string]interface{}{
		"amount":   amountInCents,
		"currency": "USD",
		"receipt":  fmt.Sprintf("order_%d", order.ID),
		"notes": map[string]interface{}{
			"buyer_email":  order.BuyerEmail,
			"order_id":     order.ID,
			"payment_type": "deposit",
		},
	}

	gatewayOrder, err := client.Order.Create(data, nil)
	if err != nil {
		log.Printf("Razorpay order creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating payment order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gateway_order_id": gatewayOrder["id"],
		"amount":           amountInCents,
		"currency":         "USD",
		"key":              config.AppConfig.RazorpayKey,
		"reference":        orderReference(order.ID),
	})
}

// GatewayVerificationRequest contains the gateway callback data
type GatewayVerificationRequest struct {
	PaymentID      string `json:"payment_id" binding:"required"`
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
	Signature      string `json:"signature" binding:"required"`
	OrderID        uint   `json:"order_id" binding:"required"`
}

// VerifyGatewayPayment checks the gateway signature and marks the order's
// deposit as verified (User only).
func VerifyGatewayPayment(c *gin.Context) {
	email, _ := c.Get("email")

	var request GatewayVerificationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	// HMAC-SHA256 over "<gateway_order_id>|<payment_id>" with the secret
	mac := hmac.New(sha256.New, []byte(config.AppConfig.RazorpaySecret))
	mac.Write([]byte(request.GatewayOrderID + "|" + request.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(request.Signature)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
		return
	}

	var order database.Order
	if err := database.DB.Where("id = ? AND buyer_email = ?", request.OrderID, fmt.Sprint(email)).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found or doesn't belong to you"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := billing.Transition(order.Status, database.OrderStatusVerified, billing.Eligibility{}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	oldStatus := order.Status
	order.Status = database.OrderStatusVerified
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating order"})
		return
	}

	relatedID := order.ID
	notification := database.Notification{
		UserEmail:   order.BuyerEmail,
		Title:       "Deposit Verified",
		Message:     "Your deposit payment went through and has been verified automatically.",
		Type:        "payment",
		RelatedID:   &relatedID,
		RelatedType: "order",
	}
	if err := tx.Create(&notification).Error; err != nil {
		tx.Rollback()
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating notification"})
		return
	}

	if err := recordAudit(tx, order.BuyerEmail, "gateway_deposit", "order", int64(order.ID), oldStatus, order.Status); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment verified successfully", "order": order})
}

// paymentReference formats the human-facing installment reference
func paymentReference(paymentID, orderID uint) string {
	return fmt.Sprintf("#PL-%04d (Ord #%d)", paymentID, orderID)
}
