package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rentmystuff/rentmystuff-golang/internal/models"
)

//
// --- Cart Handlers ---
//

// getOrCreateCart finds a user's cart or creates one.
// This is a helper function to be used within a transaction.
func (h *Handlers) getOrCreateCart(tx *sql.Tx, userID int64) (*models.Cart, error) {
	var cart models.Cart

	query := "SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = ?"
	err := tx.QueryRow(query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)

	if err == nil {
		return &cart, nil // Found it
	}

	if err == sql.ErrNoRows {
		now := time.Now()
		insertQuery := "INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)"
		result, err := tx.Exec(insertQuery, userID, now, now)
		if err != nil {
			return nil, err
		}
		newCartID, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}
		return &models.Cart{ID: newCartID, UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}

	// A real database error occurred
	return nil, err
}

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ItemID int64 `json:"itemId" binding:"required"`
	Days   int   `json:"days" binding:"required,gte=1"`
}

// AddToCart is the handler for POST /v1/cart/items.
// Adding an item that is already in the cart accumulates the days
// instead of creating a second entry.
func (h *Handlers) AddToCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	cart, err := h.getOrCreateCart(tx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart initialization failed"})
		return
	}

	// The item must exist and still be listed as available.
	var isAvailable bool
	err = tx.QueryRow("SELECT is_available FROM items WHERE id = ?", input.ItemID).Scan(&isAvailable)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !isAvailable {
		c.JSON(http.StatusConflict, gin.H{"error": "Item is not available for rent"})
		return
	}

	// Insert or Update logic (Upsert): duplicate adds sum the days
	_, err = tx.Exec(`
		INSERT INTO cart_items (cart_id, item_id, days, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			days = days + VALUES(days),
			updated_at = NOW()`,
		cart.ID, input.ItemID, input.Days)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	// Read the entry back so the response carries the accumulated days.
	var entry models.CartItem
	err = tx.QueryRow(`
		SELECT id, cart_id, item_id, days, created_at, updated_at
		FROM cart_items
		WHERE cart_id = ? AND item_id = ?`,
		cart.ID, input.ItemID).Scan(
		&entry.ID, &entry.CartID, &entry.ItemID, &entry.Days, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart entry"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart", "entry": entry})
}

// CartEntryResponse is a helper struct for the GetCart handler
type CartEntryResponse struct {
	ItemID      int64   `json:"itemId"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	PricePerDay float64 `json:"pricePerDay"`
	Days        int     `json:"days"`
	LineTotal   float64 `json:"lineTotal"`
	IsAvailable bool    `json:"isAvailable"`
}

// GetCart is the handler for GET /v1/cart.
// It rehydrates the full contents of the user's cart.
func (h *Handlers) GetCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			// No cart exists yet. Return an empty cart response.
			c.JSON(http.StatusOK, gin.H{
				"entries":  []CartEntryResponse{},
				"subtotal": 0.0,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	query := `
		SELECT
			ci.item_id, i.title, i.category, i.image_urls, i.price_per_day, ci.days, i.is_available
		FROM cart_items ci
		JOIN items i ON ci.item_id = i.id
		WHERE ci.cart_id = ?
		ORDER BY ci.created_at ASC
	`
	rows, err := h.DB.Query(query, cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart entries"})
		return
	}
	defer rows.Close()

	var entries []CartEntryResponse
	var subtotal float64

	for rows.Next() {
		var entry CartEntryResponse
		var imageJSON string
		if err := rows.Scan(
			&entry.ItemID,
			&entry.Title,
			&entry.Category,
			&imageJSON,
			&entry.PricePerDay,
			&entry.Days,
			&entry.IsAvailable,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart entry"})
			return
		}

		entry.ImageURL = firstImageURL(imageJSON)
		entry.LineTotal = entry.PricePerDay * float64(entry.Days)
		subtotal += entry.LineTotal

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart entries"})
		return
	}

	if entries == nil {
		entries = []CartEntryResponse{}
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"subtotal": subtotal,
	})
}

// UpdateCartItemInput defines the JSON for updating an entry's rental days.
// No binding tag on Days: zero and negative values are accepted and clamped
// below, so the field must not be rejected as missing.
type UpdateCartItemInput struct {
	Days int `json:"days"`
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:item_id.
// Days below 1 (zero included) are clamped to 1; the cart never holds a
// zero-day rental.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	itemIDStr := c.Param("item_id")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	days := input.Days
	if days < 1 {
		days = 1
	}

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	query := `
		UPDATE cart_items
		SET days = ?, updated_at = ?
		WHERE cart_id = ? AND item_id = ?`

	result, err := h.DB.Exec(query, days, time.Now(), cartID, itemIDStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart entry updated",
		"days":    days,
	})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:item_id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	itemIDStr := c.Param("item_id")

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	h.deleteCartItem(c, cartID, itemIDStr)
}

// deleteCartItem is a helper to DRY up the delete logic
func (h *Handlers) deleteCartItem(c *gin.Context, cartID int64, itemIDStr string) {
	query := "DELETE FROM cart_items WHERE cart_id = ? AND item_id = ?"
	result, err := h.DB.Exec(query, cartID, itemIDStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart entry removed"})
}

// ClearCart is the handler for DELETE /v1/cart.
func (h *Handlers) ClearCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Nothing to clear.
			c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	if _, err := h.DB.Exec("DELETE FROM cart_items WHERE cart_id = ?", cartID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
