package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/rentmystuff/rentmystuff-golang/internal/models"
)

//
// --- Item Handlers ---
//

// CreateItemInput defines the JSON body for listing a new item.
type CreateItemInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	PricePerDay float64  `json:"pricePerDay" binding:"required,gt=0"`
	Category    string   `json:"category" binding:"required"`
	ImageURLs   []string `json:"imageUrls" binding:"required,min=1,dive,url"`
}

// CreateItem is the handler for POST /v1/items.
// The owner's name and photo are snapshotted onto the item row.
func (h *Handlers) CreateItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	ownerID := userID_raw.(int64)

	var input CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ownerName string
	var ownerPhoto *string
	err := h.DB.QueryRow("SELECT name, photo_url FROM users WHERE id = ?", ownerID).Scan(&ownerName, &ownerPhoto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load owner profile"})
		return
	}

	imageJSON, err := json.Marshal(input.ImageURLs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode image list"})
		return
	}

	now := time.Now()
	item := &models.Item{
		OwnerID:     ownerID,
		OwnerName:   ownerName,
		OwnerPhoto:  ownerPhoto,
		Title:       input.Title,
		Slug:        slug.Make(input.Title),
		Description: input.Description,
		PricePerDay: input.PricePerDay,
		Category:    input.Category,
		ImageURLs:   input.ImageURLs,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO items
		(owner_id, owner_name, owner_photo, title, slug, description, price_per_day, category, image_urls, is_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`
	result, err := h.DB.Exec(query,
		item.OwnerID, item.OwnerName, item.OwnerPhoto, item.Title, item.Slug,
		item.Description, item.PricePerDay, item.Category, string(imageJSON),
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}

	item.ID, err = result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new item ID"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item listed successfully",
		"item":    item,
	})
}

const itemColumns = `
	id, owner_id, owner_name, owner_photo, title, slug, description,
	price_per_day, category, image_urls, is_available, created_at, updated_at`

// scanItem scans one item row, decoding the image_urls JSON column.
func scanItem(row interface{ Scan(...interface{}) error }) (*models.Item, error) {
	var item models.Item
	var imageJSON string
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.OwnerName, &item.OwnerPhoto,
		&item.Title, &item.Slug, &item.Description, &item.PricePerDay,
		&item.Category, &imageJSON, &item.IsAvailable,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(imageJSON), &item.ImageURLs); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetAllItems is the handler for GET /v1/items (public).
// Newest listings first, matching the browse page.
func (h *Handlers) GetAllItems(c *gin.Context) {
	query := "SELECT" + itemColumns + " FROM items ORDER BY created_at DESC"
	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan item"})
			return
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetItem is the handler for GET /v1/items/:id (public).
func (h *Handlers) GetItem(c *gin.Context) {
	itemID := c.Param("id")

	query := "SELECT" + itemColumns + " FROM items WHERE id = ?"
	item, err := scanItem(h.DB.QueryRow(query, itemID))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// GetMyItems is the handler for GET /v1/items/mine.
// It returns the caller's own listings for the dashboard.
func (h *Handlers) GetMyItems(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	ownerID := userID_raw.(int64)

	query := "SELECT" + itemColumns + " FROM items WHERE owner_id = ? ORDER BY created_at DESC"
	rows, err := h.DB.Query(query, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan item"})
			return
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ToggleItemAvailability is the handler for PATCH /v1/items/:id/availability.
// Only the owner may flip an item between active and inactive.
func (h *Handlers) ToggleItemAvailability(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	ownerID := userID_raw.(int64)
	itemID := c.Param("id")

	query := `
		UPDATE items
		SET is_available = NOT is_available, updated_at = ?
		WHERE id = ? AND owner_id = ?`
	result, err := h.DB.Exec(query, time.Now(), itemID, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found or you do not own it"})
		return
	}

	var isAvailable bool
	if err := h.DB.QueryRow("SELECT is_available FROM items WHERE id = ?", itemID).Scan(&isAvailable); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read item state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Item availability updated",
		"isAvailable": isAvailable,
	})
}

// DeleteItem is the handler for DELETE /v1/items/:id (owner-only).
// Any cart entries referencing the item are removed in the same
// transaction; order history keeps its snapshot of the rental.
func (h *Handlers) DeleteItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	ownerID := userID_raw.(int64)
	itemID := c.Param("id")

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow("SELECT id FROM items WHERE id = ? AND owner_id = ?", itemID, ownerID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found or you do not own it"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch item"})
		return
	}

	if _, err := tx.Exec("DELETE FROM cart_items WHERE item_id = ?", id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart references"})
		return
	}

	if _, err := tx.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}
