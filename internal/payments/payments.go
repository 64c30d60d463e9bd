package payments

import (
	"context"
	"math"
)

// Currency is the fixed currency for all checkout sessions.
const Currency = "inr"

// Session statuses reported by the hosted gateway.
const (
	StatusOpen     = "open"
	StatusComplete = "complete"
	StatusExpired  = "expired"
)

// CreateSessionInput describes a single-line-item hosted checkout session.
// Metadata is attached to the session opaquely and returned unchanged on
// retrieval.
type CreateSessionInput struct {
	ProductName   string
	UnitAmount    int64 // minor currency units per day
	Quantity      int64 // rental days
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Session is the normalized projection of a hosted checkout session.
type Session struct {
	ID            string
	URL           string
	Status        string
	AmountTotal   int64 // minor currency units
	Currency      string
	Metadata      map[string]string
	CustomerEmail string
}

// Gateway is the hosted payment service. The production implementation
// lives in the stripe subpackage; tests use a fake.
type Gateway interface {
	// CreateSession requests a hosted payment page and returns the
	// session, including the URL the renter is redirected to.
	CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error)

	// GetSession retrieves a session by ID, expanding line-item detail.
	GetSession(ctx context.Context, id string) (*Session, error)
}

// UnitAmount converts a per-day price in major units to minor units.
func UnitAmount(pricePerDay float64) int64 {
	return int64(math.Round(pricePerDay * 100))
}

// SessionQuantity maps rental days to the line-item quantity (minimum 1).
func SessionQuantity(days int) int64 {
	if days < 1 {
		return 1
	}
	return int64(days)
}

// MajorAmount converts a minor-unit total back to major units for the
// order record.
func MajorAmount(minor int64) float64 {
	return float64(minor) / 100
}
