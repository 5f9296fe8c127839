package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"motormart/database"
)

// GetUserProfile returns the authenticated user's profile
func GetUserProfile(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user database.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfileRequest contains the mutable profile fields
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
}

// UpdateUserProfile updates the authenticated user's profile
func UpdateUserProfile(c *gin.Context) {
	userID, _ := c.Get("userID")

	var request UpdateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	user.Username = request.Username
	if request.Phone != "" {
		user.Phone = request.Phone
	}
	if request.Country != "" {
		user.Country = request.Country
	}

	if err := database.DB.Save(&user).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetAllUsers returns every user account (Admin only)
func GetAllUsers(c *gin.Context) {
	var users []database.User
	if err := database.DB.Order("id DESC").Find(&users).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}
