package controllers

import (
	"motormart/database"
)

// User role constants
const (
	RoleAdmin = database.RoleAdmin
	RoleUser  = database.RoleUser
)

// Order status constants
const (
	OrderStatusPending   = database.OrderStatusPending
	OrderStatusVerified  = database.OrderStatusVerified
	OrderStatusShipping  = database.OrderStatusShipping
	OrderStatusDelivered = database.OrderStatusDelivered
	OrderStatusRejected  = database.OrderStatusRejected
)

// Payment status constants
const (
	PaymentStatusPending  = database.PaymentStatusPending
	PaymentStatusVerified = database.PaymentStatusVerified
	PaymentStatusRejected = database.PaymentStatusRejected
)

// Vehicle status constants
const (
	VehicleStatusAvailable = database.VehicleStatusAvailable
	VehicleStatusReserved  = database.VehicleStatusReserved
	VehicleStatusSold      = database.VehicleStatusSold
)
