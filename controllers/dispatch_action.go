package controllers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"motormart/database"
)

// DispatchAction is the legacy read endpoint. The SPA POSTs {"page": ...}
// and always receives HTTP 200; failures are reported through an "error"
// field in the body, matching the wire contract the frontend was built
// against.
func DispatchAction(c *gin.Context) {
	var input map[string]any
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Invalid request method"})
		return
	}

	page, ok := input["page"].(string)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"error": "Missing page parameter"})
		return
	}

	switch page {
	case "vehicles":
		actionVehicles(c)
	case "vehicle":
		actionVehicle(c, input)
	case "orders":
		actionOrders(c, input)
	case "transactions":
		actionTransactions(c)
	case "order":
		actionOrder(c, input)
	case "dashboard":
		actionDashboard(c)
	case "profile":
		actionProfile(c, input)
	case "wishlist":
		actionWishlist(c, input)
	default:
		c.JSON(http.StatusOK, gin.H{"error": "Invalid page request: " + page})
	}
}

func actionVehicles(c *gin.Context) {
	rows, err := database.Store.Select("vehicles", nil, "id", "DESC", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rows))
}

func actionVehicle(c *gin.Context, input map[string]any) {
	id, ok := input["id"]
	if !ok {
		c.JSON(http.StatusOK, gin.H{"error": "Vehicle not found"})
		return
	}

	vehicles, err := database.Store.Select("vehicles", map[string]any{"id": id}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	if len(vehicles) == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "Vehicle not found"})
		return
	}

	vehicle := vehicles[0]
	gallery, err := database.Store.Select("vehicle_images", map[string]any{"vehicle_id": id}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}

	paths := make([]any, 0, len(gallery))
	for _, g := range gallery {
		paths = append(paths, g["image_path"])
	}
	vehicle["gallery"] = paths

	c.JSON(http.StatusOK, vehicle)
}

func actionOrders(c *gin.Context, input map[string]any) {
	conditions := map[string]any{}
	email, hasEmail := input["email"].(string)
	role, hasRole := input["role"].(string)
	if hasEmail && hasRole && role == database.RoleUser {
		conditions["buyer_email"] = email
	}

	orders, err := database.Store.Select("orders", conditions, "id", "DESC", 0)
	if err != nil {
		dbError(c, err)
		return
	}

	// Denormalize the vehicle onto every order, one point query per row
	response := make([]database.Row, 0, len(orders))
	for _, order := range orders {
		vehicles, err := database.Store.Select("vehicles", map[string]any{"id": order["vehicle_id"]}, "", "", 0)
		if err != nil {
			dbError(c, err)
			return
		}
		if len(vehicles) > 0 {
			order["vehicle"] = vehicles[0]
		}
		response = append(response, order)
	}

	c.JSON(http.StatusOK, response)
}

func actionTransactions(c *gin.Context) {
	orders, err := database.Store.Select("orders", nil, "id", "DESC", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	installments, err := database.Store.Select("payments", nil, "id", "DESC", 0)
	if err != nil {
		dbError(c, err)
		return
	}

	transactions := make([]database.Row, 0, len(orders)+len(installments))

	for _, order := range orders {
		vehicles, err := database.Store.Select("vehicles", map[string]any{"id": order["vehicle_id"]}, "", "", 0)
		if err != nil {
			dbError(c, err)
			return
		}
		order["type"] = "Initial Deposit"
		order["amount_display"] = order["deposit_amount"]
		order["reference"] = fmt.Sprintf("#EB-%04d", rowInt64(order["id"]))
		if len(vehicles) > 0 {
			order["vehicle"] = vehicles[0]
		}
		transactions = append(transactions, order)
	}

	for _, inst := range installments {
		orderRows, err := database.Store.Select("orders", map[string]any{"id": inst["order_id"]}, "", "", 0)
		if err != nil {
			dbError(c, err)
			return
		}
		if len(orderRows) == 0 {
			continue
		}
		order := orderRows[0]
		vehicles, err := database.Store.Select("vehicles", map[string]any{"id": order["vehicle_id"]}, "", "", 0)
		if err != nil {
			dbError(c, err)
			return
		}

		month := rowInt64(inst["month_number"])
		monthLabel := "?"
		if month > 0 {
			monthLabel = fmt.Sprintf("%d", month)
		}
		inst["type"] = fmt.Sprintf("Month %s Installment", monthLabel)
		inst["amount_display"] = inst["amount"]
		inst["buyer_email"] = order["buyer_email"]
		inst["reference"] = fmt.Sprintf("#PL-%04d (Ord #%d)", rowInt64(inst["id"]), rowInt64(order["id"]))
		if len(vehicles) > 0 {
			inst["vehicle"] = vehicles[0]
		}
		transactions = append(transactions, inst)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return rowTime(transactions[i]["created_at"]).After(rowTime(transactions[j]["created_at"]))
	})

	c.JSON(http.StatusOK, transactions)
}

func actionOrder(c *gin.Context, input map[string]any) {
	id, ok := input["id"]
	if !ok {
		c.JSON(http.StatusOK, gin.H{"error": "Order not found"})
		return
	}

	orders, err := database.Store.Select("orders", map[string]any{"id": id}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	if len(orders) == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "Order not found"})
		return
	}

	order := orders[0]
	vehicles, err := database.Store.Select("vehicles", map[string]any{"id": order["vehicle_id"]}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	if len(vehicles) > 0 {
		order["vehicle"] = vehicles[0]
	}

	payments, err := database.Store.Select("payments", map[string]any{"order_id": id}, "", "", 0)
	if err != nil {
		payments = nil
	}
	order["payments"] = nonNil(payments)

	c.JSON(http.StatusOK, order)
}

func actionDashboard(c *gin.Context) {
	totalVehicles, err := database.Store.Count("vehicles", nil)
	if err != nil {
		dbError(c, err)
		return
	}
	availableVehicles, err := database.Store.Count("vehicles", map[string]any{"status": database.VehicleStatusAvailable})
	if err != nil {
		dbError(c, err)
		return
	}
	totalOrders, err := database.Store.Count("orders", nil)
	if err != nil {
		dbError(c, err)
		return
	}

	// Revenue is the summed price of vehicles on delivered orders
	completed, err := database.Store.Select("orders", map[string]any{"status": database.OrderStatusDelivered}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	var totalRevenue float64
	for _, ord := range completed {
		vehicles, err := database.Store.Select("vehicles", map[string]any{"id": ord["vehicle_id"]}, "", "", 0)
		if err != nil {
			dbError(c, err)
			return
		}
		if len(vehicles) > 0 {
			totalRevenue += rowFloat64(vehicles[0]["price"])
		}
	}

	recent, err := database.Store.Select("vehicles", nil, "id", "DESC", 4)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_vehicles":     totalVehicles,
		"available_vehicles": availableVehicles,
		"total_orders":       totalOrders,
		"total_revenue":      totalRevenue,
		"recent_vehicles":    nonNil(recent),
	})
}

func actionProfile(c *gin.Context, input map[string]any) {
	if all, ok := input["all"].(bool); ok && all {
		users, err := database.Store.Select("users", nil, "id", "DESC", 0)
		if err != nil {
			dbError(c, err)
			return
		}
		for _, u := range users {
			scrubCredentials(u)
		}
		c.JSON(http.StatusOK, nonNil(users))
		return
	}

	email, ok := input["email"].(string)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"error": "User not found"})
		return
	}

	profiles, err := database.Store.Select("users", map[string]any{"email": email}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}
	if len(profiles) == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "User not found"})
		return
	}
	scrubCredentials(profiles[0])
	c.JSON(http.StatusOK, profiles[0])
}

func actionWishlist(c *gin.Context, input map[string]any) {
	email, ok := input["email"].(string)
	if !ok {
		c.JSON(http.StatusOK, []database.Row{})
		return
	}

	wishlist, err := database.Store.Select("wishlist_items", map[string]any{"user_email": email}, "", "", 0)
	if err != nil {
		dbError(c, err)
		return
	}

	// Entries whose vehicle has been deleted are skipped
	results := make([]database.Row, 0, len(wishlist))
	for _, item := range wishlist {
		vehicles, err := database.Store.Select("vehicles", map[string]any{"id": item["vehicle_id"]}, "", "", 0)
		if err != nil {
			dbError(c, err)
			return
		}
		if len(vehicles) > 0 {
			item["vehicle"] = vehicles[0]
			results = append(results, item)
		}
	}

	c.JSON(http.StatusOK, results)
}

// dbError reports a database failure the way the legacy backend did: HTTP
// 200 with the driver message in the error field.
func dbError(c *gin.Context, err error) {
	log.Printf("Database error: %v", err)
	c.JSON(http.StatusOK, gin.H{"error": "Database error: " + err.Error()})
}

// scrubCredentials removes password material from a raw user row before it
// leaves the server.
func scrubCredentials(u database.Row) {
	delete(u, "password_hash")
	delete(u, "password")
}

func nonNil(rows []database.Row) []database.Row {
	if rows == nil {
		return []database.Row{}
	}
	return rows
}

// rowInt64 coerces a scanned column value to int64
func rowInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		var out int64
		fmt.Sscanf(n, "%d", &out)
		return out
	}
	return 0
}

// rowFloat64 coerces a scanned column value to float64. Postgres DECIMAL
// columns arrive as strings.
func rowFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case string:
		var out float64
		fmt.Sscanf(n, "%g", &out)
		return out
	}
	return 0
}

// rowTime coerces a scanned column value to time.Time for sorting
func rowTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
