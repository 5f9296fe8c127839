package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"motormart/config"
	"motormart/database"
	"motormart/utils"
)

// LoginRequest contains user login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest contains new user registration data
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
}

// LoginResponse is returned on successful authentication
type LoginResponse struct {
	Token  string        `json:"token"`
	User   database.User `json:"user"`
	Expiry int64         `json:"expiry"`
}

// Login handles user authentication and returns a JWT token
func Login(c *gin.Context) {
	var loginRequest LoginRequest
	if err := c.ShouldBindJSON(&loginRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.User
	err := database.DB.Where("email = ?", loginRequest.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		} else {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	if !utils.CheckPasswordHash(loginRequest.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	expiryTime := time.Now().Add(config.GetJWTExpiration())
	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, expiryTime)
	if err != nil {
		log.Printf("JWT error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:  token,
		User:   user,
		Expiry: expiryTime.Unix(),
	})
}

// Register handles user registration
func Register(c *gin.Context) {
	var registerRequest RegisterRequest
	if err := c.ShouldBindJSON(&registerRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check if email already exists
	var existingUser database.User
	err := database.DB.Where("email = ?", registerRequest.Email).First(&existingUser).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	hashedPassword, err := utils.HashPassword(registerRequest.Password)
	if err != nil {
		log.Printf("Password hashing error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	// Registration always creates a regular user; admins are seeded
	user := database.User{
		Username:     registerRequest.Username,
		Email:        registerRequest.Email,
		PasswordHash: hashedPassword,
		Phone:        registerRequest.Phone,
		Country:      registerRequest.Country,
		Role:         database.RoleUser,
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		log.Printf("User creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	notification := database.Notification{
		UserEmail: user.Email,
		Title:     "Welcome to MotorMart",
		Message:   "Thank you for registering with MotorMart! Browse the inventory to find your next vehicle.",
		Type:      "welcome",
		IsRead:    false,
	}

	if err := tx.Create(&notification).Error; err != nil {
		tx.Rollback()
		log.Printf("Notification creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create welcome notification"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	expiryTime := time.Now().Add(config.GetJWTExpiration())
	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, expiryTime)
	if err != nil {
		log.Printf("JWT error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User created but failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		Token:  token,
		User:   user,
		Expiry: expiryTime.Unix(),
	})
}

// RefreshToken generates a new token for a logged in user
func RefreshToken(c *gin.Context) {
	userID, _ := c.Get("userID")
	email, _ := c.Get("email")
	role, _ := c.Get("role")

	userIDUint, ok := userID.(uint)
	if !ok {
		log.Printf("Failed to convert userID to uint: %v", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return
	}

	expiryTime := time.Now().Add(config.GetJWTExpiration())
	token, err := utils.GenerateJWT(userIDUint, email.(string), role.(string), expiryTime)
	if err != nil {
		log.Printf("JWT error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"expiry": expiryTime.Unix(),
	})
}

// ChangePasswordRequest contains data for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword updates the authenticated user's password
func ChangePassword(c *gin.Context) {
	userID, _ := c.Get("userID")

	var changePassRequest ChangePasswordRequest
	if err := c.ShouldBindJSON(&changePassRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if !utils.CheckPasswordHash(changePassRequest.CurrentPassword, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	newPasswordHash, err := utils.HashPassword(changePassRequest.NewPassword)
	if err != nil {
		log.Printf("Password hashing error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	if err := database.DB.Model(&user).Update("password_hash", newPasswordHash).Error; err != nil {
		log.Printf("Password update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
