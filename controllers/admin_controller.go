package controllers

import (
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"motormart/database"
)

// AdminDashboard returns key statistics for the admin dashboard
func AdminDashboard(c *gin.Context) {
	var totalVehicles int64
	if err := database.DB.Model(&database.Vehicle{}).Count(&totalVehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count vehicles"})
		return
	}

	var availableVehicles int64
	if err := database.DB.Model(&database.Vehicle{}).
		Where("status = ?", database.VehicleStatusAvailable).
		Count(&availableVehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count available vehicles"})
		return
	}

	var totalOrders int64
	if err := database.DB.Model(&database.Order{}).Count(&totalOrders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	var totalCustomers int64
	if err := database.DB.Model(&database.User{}).
		Where("role = ?", database.RoleUser).
		Count(&totalCustomers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count customers"})
		return
	}

	// Revenue is the summed price of vehicles on delivered orders
	var totalRevenue float64
	err := database.DB.Model(&database.Order{}).
		Select("COALESCE(SUM(vehicles.price), 0)").
		Joins("JOIN vehicles ON vehicles.id = orders.vehicle_id").
		Where("orders.status = ?", database.OrderStatusDelivered).
		Scan(&totalRevenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}

	var recentVehicles []database.Vehicle
	if err := database.DB.Order("id DESC").Limit(4).Find(&recentVehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent vehicles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_vehicles":     totalVehicles,
		"available_vehicles": availableVehicles,
		"total_orders":       totalOrders,
		"total_customers":    totalCustomers,
		"total_revenue":      totalRevenue,
		"recent_vehicles":    recentVehicles,
	})
}

// Transaction is one row of the admin-wide money movement view: either an
// order deposit or a monthly installment.
type Transaction struct {
	Type          string            `json:"type"`
	Reference     string            `json:"reference"`
	BuyerEmail    string            `json:"buyer_email"`
	AmountDisplay float64           `json:"amount_display"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	Vehicle       *database.Vehicle `json:"vehicle,omitempty"`
}

// AdminGetTransactions merges deposits and installments, newest first (Admin only)
func AdminGetTransactions(c *gin.Context) {
	var orders []database.Order
	if err := database.DB.Preload("Vehicle").Find(&orders).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	var payments []database.Payment
	if err := database.DB.Preload("Order.Vehicle").Find(&payments).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	transactions := make([]Transaction, 0, len(orders)+len(payments))

	for _, order := range orders {
		transactions = append(transactions, Transaction{
			Type:          "Initial Deposit",
			Reference:     orderReference(order.ID),
			BuyerEmail:    order.BuyerEmail,
			AmountDisplay: order.DepositAmount,
			Status:        order.Status,
			CreatedAt:     order.CreatedAt,
			Vehicle:       order.Vehicle,
		})
	}

	for _, payment := range payments {
		if payment.Order == nil {
			continue
		}
		label := "Month ? Installment"
		if payment.MonthNumber > 0 {
			label = "Month " + strconv.Itoa(payment.MonthNumber) + " Installment"
		}
		transactions = append(transactions, Transaction{
			Type:          label,
			Reference:     paymentReference(payment.ID, payment.OrderID),
			BuyerEmail:    payment.Order.BuyerEmail,
			AmountDisplay: payment.Amount,
			Status:        payment.Status,
			CreatedAt:     payment.CreatedAt,
			Vehicle:       payment.Order.Vehicle,
		})
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})

	c.JSON(http.StatusOK, transactions)
}

// AdminGetAuditLog returns the audit trail, newest first (Admin only)
func AdminGetAuditLog(c *gin.Context) {
	var entries []database.AuditLog
	if err := database.DB.Order("id DESC").Limit(200).Find(&entries).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit log"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
