package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"motormart/database"
	"motormart/utils"
)

// DispatchCommand is the legacy write endpoint. The request body (JSON or
// multipart) carries exactly one mutation flag selecting the action. Like
// the read endpoint it always answers HTTP 200 and signals failure through
// an "error" body field.
func DispatchCommand(c *gin.Context) {
	input := commandInput(c)

	switch {
	case hasFlag(input, "login"):
		commandLogin(c, input)
	case hasFlag(input, "register"):
		commandRegister(c, input)
	case hasFlag(input, "resetPassword"):
		commandResetPassword(c, input)
	case hasFlag(input, "updateProfile"):
		commandUpdateProfile(c, input)
	case hasFlag(input, "placeOrder"):
		commandPlaceOrder(c, input)
	case hasFlag(input, "addVehicle"):
		commandAddVehicle(c, input)
	case hasFlag(input, "updateVehicle"):
		commandUpdateVehicle(c, input)
	case hasFlag(input, "deleteVehicle"):
		commandDeleteVehicle(c, input)
	case hasFlag(input, "toggleWishlist"):
		commandToggleWishlist(c, input)
	case hasFlag(input, "verifyPayment"):
		commandVerifyPayment(c, input)
	case hasFlag(input, "addPayment"):
		commandAddPayment(c, input)
	default:
		c.JSON(http.StatusOK, gin.H{"error": "Missing controller action"})
	}
}

// commandInput flattens a JSON or form/multipart body into one map
func commandInput(c *gin.Context) map[string]any {
	input := map[string]any{}

	if strings.Contains(c.ContentType(), "application/json") {
		_ = c.ShouldBindJSON(&input)
		return input
	}

	// Multipart or urlencoded: first value per field, files are read
	// separately by the branches that expect them.
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		_ = c.Request.ParseForm()
	}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			input[key] = values[0]
		}
	}
	if c.Request.MultipartForm != nil {
		for key, values := range c.Request.MultipartForm.Value {
			if len(values) > 0 {
				input[key] = values[0]
			}
		}
	}
	return input
}

func hasFlag(input map[string]any, flag string) bool {
	_, ok := input[flag]
	return ok
}

// asString coerces a decoded JSON value or form value to its string form
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return ""
}

func inputString(input map[string]any, key string) string {
	return asString(input[key])
}

func inputStringDefault(input map[string]any, key, fallback string) string {
	if v, ok := input[key]; ok {
		return asString(v)
	}
	return fallback
}

func commandLogin(c *gin.Context, input map[string]any) {
	email := inputString(input, "email")
	password := inputString(input, "password")

	users, err := database.Store.Select("users", map[string]any{"email": email}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	if len(users) == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "Invalid email or password"})
		return
	}

	user := users[0]
	hash, _ := user["password_hash"].(string)
	if !utils.CheckPasswordHash(password, hash) {
		c.JSON(http.StatusOK, gin.H{"error": "Invalid email or password"})
		return
	}

	scrubCredentials(user)
	c.JSON(http.StatusOK, gin.H{"success": "Login successful", "user": user})
}

func commandRegister(c *gin.Context, input map[string]any) {
	email := inputString(input, "email")

	exists, err := database.Store.Select("users", map[string]any{"email": email}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	if len(exists) > 0 {
		c.JSON(http.StatusOK, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := utils.HashPassword(inputString(input, "password"))
	if err != nil {
		dbError(c, err)
		return
	}

	now := time.Now()
	data := map[string]any{
		"username":      inputString(input, "username"),
		"email":         email,
		"password_hash": hash,
		"phone":         inputStringDefault(input, "phone", ""),
		"country":       inputStringDefault(input, "country", ""),
		"role":          database.RoleUser,
		"created_at":    now,
		"updated_at":    now,
	}

	if _, err := database.Store.Insert("users", data); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to create account"})
		return
	}

	users, err := database.Store.Select("users", map[string]any{"email": email}, "", "", 0)
	if err != nil || len(users) == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to create account"})
		return
	}
	scrubCredentials(users[0])
	c.JSON(http.StatusOK, gin.H{"success": "Account created successfully", "user": users[0]})
}

func commandResetPassword(c *gin.Context, input map[string]any) {
	email := inputString(input, "email")
	hash, err := utils.HashPassword(inputString(input, "password"))
	if err != nil {
		dbError(c, err)
		return
	}

	update := map[string]any{"password_hash": hash, "updated_at": time.Now()}
	if err := database.Store.Update("users", update, map[string]any{"email": email}); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "User not found or reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Password reset successful"})
}

func commandUpdateProfile(c *gin.Context, input map[string]any) {
	email := inputString(input, "email")
	update := map[string]any{"username": inputString(input, "username"), "updated_at": time.Now()}

	if err := database.Store.Update("users", update, map[string]any{"email": email}); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Update failed"})
		return
	}

	users, err := database.Store.Select("users", map[string]any{"email": email}, "", "", 0)
	if err != nil || len(users) == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "Update failed"})
		return
	}
	scrubCredentials(users[0])
	c.JSON(http.StatusOK, gin.H{"success": "Profile updated", "user": users[0]})
}

func commandPlaceOrder(c *gin.Context, input map[string]any) {
	now := time.Now()
	data := map[string]any{
		"vehicle_id":          inputString(input, "vehicle_id"),
		"buyer_email":         inputString(input, "buyer_email"),
		"payment_type":        inputString(input, "payment_type"),
		"deposit_amount":      inputString(input, "deposit_amount"),
		"monthly_installment": inputStringDefault(input, "monthly_installment", "0"),
		"payment_period":      inputStringDefault(input, "payment_period", "0"),
		"status":              database.OrderStatusPending,
		"country":             inputStringDefault(input, "country", "United States"),
		"state":               inputString(input, "state"),
		"city":                inputStringDefault(input, "city", ""),
		"address":             inputString(input, "address"),
		"zip_code":            inputString(input, "zip_code"),
		"created_at":          now,
		"updated_at":          now,
	}

	if file, err := c.FormFile("receipt"); err == nil {
		if path, err := utils.SaveUpload(c, file, "receipts"); err == nil {
			data["receipt_path"] = path
		}
	}

	if _, err := database.Store.Insert("orders", data); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to place order"})
		return
	}

	// Reserve the vehicle; independent statement, same as the original
	if err := database.Store.Update("vehicles",
		map[string]any{"status": database.VehicleStatusReserved},
		map[string]any{"id": inputString(input, "vehicle_id")}); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": "Order placed successfully."})
}

func commandAddVehicle(c *gin.Context, input map[string]any) {
	now := time.Now()
	data := map[string]any{
		"make":         inputString(input, "make"),
		"model":        inputString(input, "model"),
		"year":         inputString(input, "year"),
		"price":        inputString(input, "price"),
		"vin":          inputString(input, "vin"),
		"mileage":      inputString(input, "mileage"),
		"engine":       inputStringDefault(input, "engine", ""),
		"transmission": inputStringDefault(input, "transmission", ""),
		"color":        inputStringDefault(input, "color", ""),
		"image":        inputStringDefault(input, "image", ""),
		"status":       database.VehicleStatusAvailable,
		"created_at":   now,
		"updated_at":   now,
	}

	vehicleID, err := database.Store.Insert("vehicles", data)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to add vehicle"})
		return
	}

	// Gallery uploads, one row per stored file
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["images"]
		if len(files) == 0 {
			files = form.File["images[]"]
		}
		for _, file := range files {
			path, err := utils.SaveUpload(c, file, "vehicles")
			if err != nil {
				continue
			}
			_, _ = database.Store.Insert("vehicle_images", map[string]any{
				"vehicle_id": vehicleID,
				"image_path": path,
				"created_at": time.Now(),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": "Vehicle added successfully"})
}

// vehicleColumns is the fixed set of columns updateVehicle may touch;
// request keys outside it are dropped rather than interpolated into SQL.
var vehicleColumns = map[string]bool{
	"make": true, "model": true, "year": true, "price": true, "vin": true,
	"mileage": true, "engine": true, "transmission": true, "color": true,
	"image": true, "status": true,
}

func commandUpdateVehicle(c *gin.Context, input map[string]any) {
	id := inputString(input, "id")

	data := map[string]any{}
	for key, value := range input {
		if vehicleColumns[key] {
			data[key] = asString(value)
		}
	}
	if len(data) == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to update vehicle or no changes made"})
		return
	}
	data["updated_at"] = time.Now()

	if err := database.Store.Update("vehicles", data, map[string]any{"id": id}); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to update vehicle or no changes made"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Vehicle updated successfully"})
}

func commandDeleteVehicle(c *gin.Context, input map[string]any) {
	id := inputString(input, "id")

	if err := database.Store.Delete("vehicles", map[string]any{"id": id}); err != nil {
		dbError(c, err)
		return
	}
	// Cascade gallery and wishlist rows; orders keep their vehicle_id as a
	// historical record.
	_ = database.Store.Delete("vehicle_images", map[string]any{"vehicle_id": id})
	_ = database.Store.Delete("wishlist_items", map[string]any{"vehicle_id": id})

	c.JSON(http.StatusOK, gin.H{"success": "Vehicle deleted successfully"})
}

func commandToggleWishlist(c *gin.Context, input map[string]any) {
	email := inputString(input, "email")
	vehicleID := inputString(input, "vehicle_id")

	existing, err := database.Store.Select("wishlist_items",
		map[string]any{"user_email": email, "vehicle_id": vehicleID}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}

	if len(existing) > 0 {
		if err := database.Store.Delete("wishlist_items", map[string]any{"id": existing[0]["id"]}); err != nil {
			dbError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Removed from wishlist"})
		return
	}

	_, err = database.Store.Insert("wishlist_items", map[string]any{
		"user_email": email,
		"vehicle_id": vehicleID,
		"created_at": time.Now(),
	})
	if err != nil {
		dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Added to wishlist"})
}

func commandVerifyPayment(c *gin.Context, input map[string]any) {
	status := inputString(input, "status")

	// Installment-scoped when payment_id is present, order-scoped otherwise
	if _, ok := input["payment_id"]; ok {
		update := map[string]any{"status": status, "updated_at": time.Now()}
		if err := database.Store.Update("payments", update,
			map[string]any{"id": inputString(input, "payment_id")}); err != nil {
			dbError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": "Installment verified"})
		return
	}

	orderID := inputString(input, "order_id")
	update := map[string]any{"status": status, "updated_at": time.Now()}
	if err := database.Store.Update("orders", update, map[string]any{"id": orderID}); err != nil {
		dbError(c, err)
		return
	}

	if status == database.OrderStatusDelivered {
		orders, err := database.Store.Select("orders", map[string]any{"id": orderID}, "", "", 0)
		if err == nil && len(orders) > 0 {
			_ = database.Store.Update("vehicles",
				map[string]any{"status": database.VehicleStatusSold},
				map[string]any{"id": orders[0]["vehicle_id"]})
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": "Order status updated"})
}

func commandAddPayment(c *gin.Context, input map[string]any) {
	now := time.Now()
	data := map[string]any{
		"order_id":     inputString(input, "order_id"),
		"amount":       inputStringDefault(input, "amount", "0"),
		"month_number": inputStringDefault(input, "month_number", "0"),
		"status":       database.PaymentStatusPending,
		"created_at":   now,
		"updated_at":   now,
	}

	if file, err := c.FormFile("receipt"); err == nil {
		if path, err := utils.SaveUpload(c, file, "receipts"); err == nil {
			data["receipt_path"] = path
		}
	}

	if _, err := database.Store.Insert("payments", data); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to upload payment."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Payment receipt uploaded."})
}
