package models

import "time"

// Item is the model for the 'items' table.
// Owner name and photo are denormalized onto the row so listings can be
// rendered without a join against users.
type Item struct {
	ID          int64   `json:"id" db:"id"`
	OwnerID     int64   `json:"ownerId" db:"owner_id"`
	OwnerName   string  `json:"ownerName" db:"owner_name"`
	OwnerPhoto  *string `json:"ownerPhoto,omitempty" db:"owner_photo"`
	Title       string  `json:"title" db:"title"`
	Slug        string  `json:"slug" db:"slug"`
	Description string  `json:"description" db:"description"`
	PricePerDay float64 `json:"pricePerDay" db:"price_per_day"`
	Category    string  `json:"category" db:"category"`

	// Stored as a JSON array in the image_urls column.
	ImageURLs []string `json:"imageUrls"`

	IsAvailable bool      `json:"isAvailable" db:"is_available"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
