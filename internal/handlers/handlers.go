package handlers

import (
	"database/sql"

	"github.com/rentmystuff/rentmystuff-golang/internal/payments"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB       *sql.DB          // Primary connection pool
	Payments payments.Gateway // Hosted checkout gateway; nil when unconfigured
	BaseURL  string           // Public origin used for redirect URLs
}
