package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentmystuff/rentmystuff-golang/internal/models"
)

//
// --- Order Retrieval Handlers ---
//

// OrderDetail extends the base Order with item info for list views.
// The join is LEFT because the item may have been deleted after the
// rental; the order record survives on its own.
type OrderDetail struct {
	models.Order
	ItemTitle string `json:"itemTitle,omitempty"`
	ItemImage string `json:"itemImage,omitempty"`
}

const orderDetailQuery = `
	SELECT
		o.id, o.payment_session_id, o.item_id, o.renter_id, o.owner_id,
		o.amount, o.duration, o.currency, o.status, o.created_at,
		i.title, i.image_urls
	FROM orders o
	LEFT JOIN items i ON o.item_id = i.id`

func scanOrderDetail(rows *sql.Rows) (*OrderDetail, error) {
	var d OrderDetail
	var title, imageJSON sql.NullString
	err := rows.Scan(
		&d.ID, &d.PaymentSessionID, &d.ItemID, &d.RenterID, &d.OwnerID,
		&d.Amount, &d.Duration, &d.Currency, &d.Status, &d.CreatedAt,
		&title, &imageJSON,
	)
	if err != nil {
		return nil, err
	}
	d.ItemTitle = title.String
	if imageJSON.Valid {
		d.ItemImage = firstImageURL(imageJSON.String)
	}
	return &d, nil
}

func (h *Handlers) listOrders(c *gin.Context, column string, userID int64) {
	query := orderDetailQuery + " WHERE o." + column + " = ? ORDER BY o.created_at DESC"
	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []*OrderDetail{}
	for rows.Next() {
		d, err := scanOrderDetail(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
			return
		}
		orders = append(orders, d)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetMyRentals is the handler for GET /v1/orders/rentals.
// It lists orders where the caller is the renter.
func (h *Handlers) GetMyRentals(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	h.listOrders(c, "renter_id", userID_raw.(int64))
}

// GetMyEarnings is the handler for GET /v1/orders/earnings.
// It lists orders where the caller is the item owner.
func (h *Handlers) GetMyEarnings(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	h.listOrders(c, "owner_id", userID_raw.(int64))
}

// GetOrderDetails is the handler for GET /v1/orders/:id.
// Only the renter or the owner of the order can see it.
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	orderID := c.Param("id")

	query := orderDetailQuery + " WHERE o.id = ? AND (o.renter_id = ? OR o.owner_id = ?)"
	rows, err := h.DB.Query(query, orderID, userID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	d, err := scanOrderDetail(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": d})
}
