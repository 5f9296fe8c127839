package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"motormart/database"
)

// ToggleWishlistRequest identifies the vehicle being toggled
type ToggleWishlistRequest struct {
	VehicleID uint `json:"vehicle_id" binding:"required"`
}

// ToggleWishlist adds the vehicle to the caller's wishlist, or removes it if
// already present. Two toggles return to the original membership state.
func ToggleWishlist(c *gin.Context) {
	email, _ := c.Get("email")
	userEmail := fmt.Sprint(email)

	var request ToggleWishlistRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
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

	var existing database.WishlistItem
	err := database.DB.Where("user_email = ? AND vehicle_id = ?", userEmail, request.VehicleID).First(&existing).Error
	if err == nil {
		if err := database.DB.Delete(&existing).Error; err != nil {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist", "wishlisted": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	item := database.WishlistItem{UserEmail: userEmail, VehicleID: request.VehicleID}
	if err := database.DB.Create(&item).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Added to wishlist", "wishlisted": true})
}

// GetWishlist lists the caller's wishlist with the vehicle on each entry.
// Entries whose vehicle has been deleted are skipped.
func GetWishlist(c *gin.Context) {
	email, _ := c.Get("email")

	var items []database.WishlistItem
	if err := database.DB.Where("user_email = ?", fmt.Sprint(email)).Order("id DESC").Find(&items).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	type WishlistEntry struct {
		database.WishlistItem
		Vehicle database.Vehicle `json:"vehicle"`
	}

	entries := make([]WishlistEntry, 0, len(items))
	for _, item := range items {
		var vehicle database.Vehicle
		if err := database.DB.First(&vehicle, item.VehicleID).Error; err != nil {
			continue
		}
		entries = append(entries, WishlistEntry{WishlistItem: item, Vehicle: vehicle})
	}

	c.JSON(http.StatusOK, entries)
}
