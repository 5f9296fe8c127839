package controllers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"motormart/database"
)

// GetNotifications lists the caller's notifications, newest first
func GetNotifications(c *gin.Context) {
	email, _ := c.Get("email")

	var notifications []database.Notification
	if err := database.DB.Where("user_email = ?", fmt.Sprint(email)).
		Order("id DESC").Limit(50).
		Find(&notifications).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead marks one of the caller's notifications as read
func MarkNotificationRead(c *gin.Context) {
	email, _ := c.Get("email")
	id := c.Param("id")

	result := database.DB.Model(&database.Notification{}).
		Where("id = ? AND user_email = ?", id, fmt.Sprint(email)).
		Update("is_read", true)
	if result.Error != nil {
		log.Printf("Database error: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
