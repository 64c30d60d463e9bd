package models

import "time"

// Order is the model for the 'orders' table.
// Exactly one row exists per successful payment session: the
// payment_session_id column carries a unique index and the finalize
// handler inserts only if no row for the session exists yet.
// Orders are never updated or deleted after creation.
// Amount is in major currency units (pricePerDay * days) and Duration
// is the rental length in days.
type Order struct {
	ID               int64     `json:"id" db:"id"`
	PaymentSessionID string    `json:"paymentSessionId" db:"payment_session_id"`
	ItemID           int64     `json:"itemId" db:"item_id"`
	RenterID         int64     `json:"renterId" db:"renter_id"`
	OwnerID          int64     `json:"ownerId" db:"owner_id"`
	Amount           float64   `json:"amount" db:"amount"`
	Duration         int       `json:"duration" db:"duration"`
	Currency         string    `json:"currency" db:"currency"`
	Status           string    `json:"status" db:"status"` // e.g. "paid"
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}
