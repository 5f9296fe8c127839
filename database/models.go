package database

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model
	Username     string `json:"username"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	PasswordHash string `json:"-"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	Role         string `json:"role"`
}

// Vehicle represents a vehicle listed in the inventory.
// Explicit columns instead of gorm.Model: the embedded struct would collide
// with the Model field, and vehicle deletes are hard deletes visible to the
// raw-SQL record store.
type Vehicle struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	VIN          string    `json:"vin" gorm:"column:vin"`
	Mileage      int       `json:"mileage"`
	Engine       string    `json:"engine"`
	Transmission string    `json:"transmission"`
	Color        string    `json:"color"`
	Image        string    `json:"image"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VehicleImage is a gallery attachment for a vehicle
type VehicleImage struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	VehicleID uint      `json:"vehicle_id" gorm:"index"`
	ImagePath string    `json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
}

// Order represents a purchase order placed by a buyer
type Order struct {
	gorm.Model
	VehicleID          uint     `json:"vehicle_id"`
	BuyerEmail         string   `json:"buyer_email" gorm:"index"`
	PaymentType        string   `json:"payment_type"`
	DepositAmount      float64  `json:"deposit_amount"`
	MonthlyInstallment float64  `json:"monthly_installment"`
	PaymentPeriod      int      `json:"payment_period"`
	Status             string   `json:"status"`
	Country            string   `json:"country"`
	State              string   `json:"state"`
	City               string   `json:"city"`
	Address            string   `json:"address"`
	ZipCode            string   `json:"zip_code"`
	ReceiptPath        string   `json:"receipt_path"`
	Vehicle            *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

// Payment represents a monthly installment submitted against an order
type Payment struct {
	gorm.Model
	OrderID     uint    `json:"order_id" gorm:"index"`
	Amount      float64 `json:"amount"`
	MonthNumber int     `json:"month_number"`
	ReceiptPath string  `json:"receipt_path"`
	Status      string  `json:"status"`
	Order       *Order  `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// WishlistItem is a toggle-presence join row between a user and a vehicle
type WishlistItem struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserEmail string    `json:"user_email" gorm:"index"`
	VehicleID uint      `json:"vehicle_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification represents a system notification
type Notification struct {
	gorm.Model
	UserEmail   string `json:"user_email" gorm:"index"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Type        string `json:"type"`
	RelatedID   *uint  `json:"related_id"`
	RelatedType string `json:"related_type"`
	IsRead      bool   `json:"is_read"`
}

// AuditLog records admin mutations (verification, status changes, deletions)
type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserEmail  string    `gorm:"size:255;index" json:"user_email"`
	Action     string    `gorm:"size:50;not null" json:"action"`
	EntityType string    `gorm:"size:50;not null" json:"entity_type"`
	EntityID   int64     `gorm:"not null" json:"entity_id"`
	OldValue   string    `gorm:"type:text" json:"old_value"`
	NewValue   string    `gorm:"type:text" json:"new_value"`
	CreatedAt  time.Time `json:"created_at"`
}

// Constants for status values
const (
	OrderStatusPending   = "Pending Verification"
	OrderStatusVerified  = "Verified"
	OrderStatusShipping  = "Shipping"
	OrderStatusDelivered = "Delivered"
	OrderStatusRejected  = "Rejected"

	PaymentStatusPending  = "Pending Verification"
	PaymentStatusVerified = "Verified"
	PaymentStatusRejected = "Rejected"

	VehicleStatusAvailable = "available"
	VehicleStatusReserved  = "reserved"
	VehicleStatusSold      = "sold"
	// The frontend vehicle type knows in-transit but no backend transition
	// produces it.
	VehicleStatusInTransit = "in-transit"

	PaymentTypeFull         = "full"
	PaymentTypeInstallments = "installments"

	// User roles
	RoleAdmin = "admin"
	RoleUser  = "user"
)
