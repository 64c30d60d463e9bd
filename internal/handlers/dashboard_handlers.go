package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Dashboard Stats ---
//

type DashboardStats struct {
	Listings       int     `json:"listings"`
	ActiveListings int     `json:"activeListings"`
	Rentals        int     `json:"rentals"`
	TotalEarnings  float64 `json:"totalEarnings"`
}

// GetDashboardStats returns KPI data for the user dashboard
// GET /v1/dashboard-stats
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	stats := DashboardStats{}

	// 1. Listing counts
	err := h.DB.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(is_available), 0) FROM items WHERE owner_id = ?",
		userID,
	).Scan(&stats.Listings, &stats.ActiveListings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count listings"})
		return
	}

	// 2. Rentals taken by this user
	err = h.DB.QueryRow("SELECT COUNT(*) FROM orders WHERE renter_id = ?", userID).Scan(&stats.Rentals)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count rentals"})
		return
	}

	// 3. Earnings from items this user owns
	var earnings sql.NullFloat64
	err = h.DB.QueryRow("SELECT SUM(amount) FROM orders WHERE owner_id = ?", userID).Scan(&earnings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum earnings"})
		return
	}
	stats.TotalEarnings = earnings.Float64 // 0.0 when NULL

	c.JSON(http.StatusOK, stats)
}
