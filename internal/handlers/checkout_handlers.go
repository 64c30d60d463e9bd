package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rentmystuff/rentmystuff-golang/internal/models"
	"github.com/rentmystuff/rentmystuff-golang/internal/payments"
)

//
// --- Checkout Handlers ---
//

// CreateCheckoutInput defines the JSON body for POST /v1/checkout.
// The renter is the authenticated caller.
type CreateCheckoutInput struct {
	ItemID      int64  `json:"itemId" binding:"required"`
	Days        int    `json:"days" binding:"required,gte=1"`
	RenterEmail string `json:"renterEmail" binding:"omitempty,email"`
}

// CreateCheckoutSession is the handler for POST /v1/checkout.
// It validates the rental request, prices a single line item and asks the
// payment gateway for a hosted page. The gateway is never contacted when
// validation fails.
func (h *Handlers) CreateCheckoutSession(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	renterID := userID_raw.(int64)

	var input CreateCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if h.Payments == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway is not configured"})
		return
	}

	var title string
	var ownerID int64
	var pricePerDay float64
	err := h.DB.QueryRow(
		"SELECT title, owner_id, price_per_day FROM items WHERE id = ?",
		input.ItemID,
	).Scan(&title, &ownerID, &pricePerDay)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch item"})
		return
	}

	if pricePerDay <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item price"})
		return
	}

	// The rental context rides on the session as opaque metadata and
	// comes back unchanged at verification time.
	session, err := h.Payments.CreateSession(c, payments.CreateSessionInput{
		ProductName:   fmt.Sprintf("%s rental", title),
		UnitAmount:    payments.UnitAmount(pricePerDay),
		Quantity:      payments.SessionQuantity(input.Days),
		CustomerEmail: input.RenterEmail,
		SuccessURL:    h.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     h.BaseURL + "/checkout/cancel",
		Metadata: map[string]string{
			"itemId":   strconv.FormatInt(input.ItemID, 10),
			"renterId": strconv.FormatInt(renterID, 10),
			"ownerId":  strconv.FormatInt(ownerID, 10),
			"days":     strconv.Itoa(input.Days),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": session.URL})
}

// GetCheckoutSession is the handler for GET /v1/checkout/session.
// It returns the normalized session projection used by the success page.
func (h *Handlers) GetCheckoutSession(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session_id"})
		return
	}

	if h.Payments == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway is not configured"})
		return
	}

	session, err := h.Payments.GetSession(c, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             session.ID,
		"status":         session.Status,
		"amount_total":   session.AmountTotal,
		"currency":       session.Currency,
		"metadata":       session.Metadata,
		"customer_email": session.CustomerEmail,
	})
}

// FinalizeOrderInput defines the JSON body for POST /v1/checkout/finalize.
type FinalizeOrderInput struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// FinalizeOrder is the handler for POST /v1/checkout/finalize.
// It verifies the payment session and records the order. The write is
// keyed by the payment session ID: replaying the call (e.g. a refresh of
// the success page) returns the already-recorded order instead of
// creating a duplicate.
func (h *Handlers) FinalizeOrder(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	callerID := userID_raw.(int64)

	var input FinalizeOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.Payments == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway is not configured"})
		return
	}

	session, err := h.Payments.GetSession(c, input.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return
	}

	if session.Status != payments.StatusComplete {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment session is not completed"})
		return
	}

	itemID, err := strconv.ParseInt(session.Metadata["itemId"], 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session metadata"})
		return
	}
	ownerID, err := strconv.ParseInt(session.Metadata["ownerId"], 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session metadata"})
		return
	}

	// The renter normally rides on the metadata; fall back to the caller.
	renterID := callerID
	if raw, ok := session.Metadata["renterId"]; ok {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			renterID = parsed
		}
	}

	days, err := strconv.Atoi(session.Metadata["days"])
	if err != nil || days < 1 {
		days = 1
	}

	amount := payments.MajorAmount(session.AmountTotal)

	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// Insert-if-absent keyed by session ID. The unique index on
	// payment_session_id is the backstop for concurrent replays.
	existing, err := h.findOrderBySession(tx, session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check for existing order"})
		return
	}
	if existing != nil {
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":         "Order already recorded for this payment",
			"order":           existing,
			"alreadyRecorded": true,
		})
		return
	}

	now := time.Now()
	order := &models.Order{
		PaymentSessionID: session.ID,
		ItemID:           itemID,
		RenterID:         renterID,
		OwnerID:          ownerID,
		Amount:           amount,
		Duration:         days,
		Currency:         session.Currency,
		Status:           "paid",
		CreatedAt:        now,
	}

	orderQuery := `
		INSERT INTO orders
		(payment_session_id, item_id, renter_id, owner_id, amount, duration, currency, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.Exec(orderQuery,
		order.PaymentSessionID, order.ItemID, order.RenterID, order.OwnerID,
		order.Amount, order.Duration, order.Currency, order.Status, order.CreatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	order.ID, err = result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new order ID"})
		return
	}

	// Tell the owner. The item may have been deleted since checkout
	// started, so the title lookup tolerates a missing row.
	var title string
	err = tx.QueryRow("SELECT title FROM items WHERE id = ?", itemID).Scan(&title)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch item"})
		return
	}
	message := fmt.Sprintf("Your item was rented for %d day(s)", days)
	if title != "" {
		message = fmt.Sprintf("Your item %q was rented for %d day(s)", title, days)
	}
	if err := h.AddNotification(tx, ownerID, message, "/dashboard"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record notification"})
		return
	}

	// The rented item no longer belongs in the renter's cart.
	_, err = tx.Exec(`
		DELETE ci FROM cart_items ci
		JOIN carts ca ON ci.cart_id = ca.id
		WHERE ca.user_id = ? AND ci.item_id = ?`,
		renterID, itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart entry"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment successful. Order saved.",
		"order":   order,
	})
}

// findOrderBySession returns the order recorded for a payment session,
// or nil when none exists yet.
func (h *Handlers) findOrderBySession(tx *sql.Tx, sessionID string) (*models.Order, error) {
	var o models.Order
	query := `
		SELECT id, payment_session_id, item_id, renter_id, owner_id, amount, duration, currency, status, created_at
		FROM orders WHERE payment_session_id = ?`
	err := tx.QueryRow(query, sessionID).Scan(
		&o.ID, &o.PaymentSessionID, &o.ItemID, &o.RenterID, &o.OwnerID,
		&o.Amount, &o.Duration, &o.Currency, &o.Status, &o.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
