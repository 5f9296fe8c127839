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

	"motormart/database"
	"motormart/utils"
)

// VehicleRequest carries vehicle data for create/update, multipart so the
// gallery can ride along.
type VehicleRequest struct {
	Make         string                  `form:"make" binding:"required"`
	Model        string                  `form:"model" binding:"required"`
	Year         int                     `form:"year" binding:"required"`
	Price        float64                 `form:"price" binding:"required"`
	VIN          string                  `form:"vin" binding:"required"`
	Mileage      int                     `form:"mileage"`
	Engine       string                  `form:"engine"`
	Transmission string                  `form:"transmission"`
	Color        string                  `form:"color"`
	Image        string                  `form:"image"`
	Images       []*multipart.FileHeader `form:"images"`
}

// CreateVehicle creates a new vehicle listing with optional gallery (Admin only)
func CreateVehicle(c *gin.Context) {
	var request VehicleRequest
	if err := c.ShouldBind(&request); err != nil {
		log.Println("Vehicle creation bind error:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := database.Vehicle{
		Make:         request.Make,
		Model:        request.Model,
		Year:         request.Year,
		Price:        request.Price,
		VIN:          request.VIN,
		Mileage:      request.Mileage,
		Engine:       request.Engine,
		Transmission: request.Transmission,
		Color:        request.Color,
		Image:        request.Image,
		Status:       database.VehicleStatusAvailable,
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Create(&vehicle).Error; err != nil {
		tx.Rollback()
		log.Println("Vehicle creation DB error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}

	for _, file := range request.Images {
		path, err := utils.SaveUpload(c, file, "vehicles")
		if err != nil {
			tx.Rollback()
			log.Println("Failed to save gallery image:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		image := database.VehicleImage{VehicleID: vehicle.ID, ImagePath: path}
		if err := tx.Create(&image).Error; err != nil {
			tx.Rollback()
			log.Println("Gallery row creation error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store gallery image"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicles lists the inventory, optionally filtered by status
func GetVehicles(c *gin.Context) {
	query := database.DB.Order("id DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var vehicles []database.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicles"})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// GetVehicleByID retrieves a vehicle and its gallery
func GetVehicleByID(c *gin.Context) {
	id := c.Param("id")

	var vehicle database.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicle"})
		}
		return
	}

	var images []database.VehicleImage
	if err := database.DB.Where("vehicle_id = ?", vehicle.ID).Find(&images).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve gallery"})
		return
	}

	gallery := make([]string, 0, len(images))
	for _, img := range images {
		gallery = append(gallery, img.ImagePath)
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicle": vehicle,
		"gallery": gallery,
	})
}

// UpdateVehicle updates an existing vehicle (Admin only)
func UpdateVehicle(c *gin.Context) {
	id := c.Param("id")
	var vehicle database.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	var request VehicleRequest
	if err := c.ShouldBind(&request); err != nil {
		log.Println("Vehicle update bind error:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle.Make = request.Make
	vehicle.Model = request.Model
	vehicle.Year = request.Year
	vehicle.Price = request.Price
	vehicle.VIN = request.VIN
	vehicle.Mileage = request.Mileage
	vehicle.Engine = request.Engine
	vehicle.Transmission = request.Transmission
	vehicle.Color = request.Color
	if request.Image != "" {
		vehicle.Image = request.Image
	}

	if err := database.DB.Save(&vehicle).Error; err != nil {
		log.Println("Vehicle update DB error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// UpdateVehicleStatus sets the vehicle status (Admin only)
func UpdateVehicleStatus(c *gin.Context) {
	id := c.Param("id")
	var vehicle database.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	switch body.Status {
	case database.VehicleStatusAvailable, database.VehicleStatusReserved,
		database.VehicleStatusSold, database.VehicleStatusInTransit:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown vehicle status: " + body.Status})
		return
	}

	oldStatus := vehicle.Status
	vehicle.Status = body.Status
	if err := database.DB.Save(&vehicle).Error; err != nil {
		log.Println("Vehicle status save failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle status"})
		return
	}

	email, _ := c.Get("email")
	_ = recordAudit(database.DB, fmt.Sprint(email), "vehicle_status", "vehicle", int64(vehicle.ID), oldStatus, body.Status)

	c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle deletes a vehicle, its gallery and wishlist rows (Admin only).
// Orders referencing the vehicle are kept as historical records.
func DeleteVehicle(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	var vehicle database.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Delete(&vehicle).Error; err != nil {
		tx.Rollback()
		log.Printf("Vehicle delete error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle"})
		return
	}
	if err := tx.Where("vehicle_id = ?", vehicle.ID).Delete(&database.VehicleImage{}).Error; err != nil {
		tx.Rollback()
		log.Printf("Gallery delete error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle gallery"})
		return
	}
	if err := tx.Where("vehicle_id = ?", vehicle.ID).Delete(&database.WishlistItem{}).Error; err != nil {
		tx.Rollback()
		log.Printf("Wishlist delete error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete wishlist entries"})
		return
	}

	email, _ := c.Get("email")
	if err := recordAudit(tx, fmt.Sprint(email), "vehicle_delete", "vehicle", int64(vehicle.ID), vehicle.VIN, ""); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
}
