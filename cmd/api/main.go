package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/rentmystuff/rentmystuff-golang/internal/database"
	"github.com/rentmystuff/rentmystuff-golang/internal/handlers"
	"github.com/rentmystuff/rentmystuff-golang/internal/payments"
	"github.com/rentmystuff/rentmystuff-golang/internal/payments/stripe"
	"github.com/rentmystuff/rentmystuff-golang/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Database Connection & Migrations ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// 2. --- Payment Gateway ---
	// A missing key is not fatal at startup: browsing, cart and auth keep
	// working, and checkout endpoints report the misconfiguration as 500.
	var gateway payments.Gateway
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Println("WARNING: STRIPE_SECRET_KEY is not set. Checkout endpoints will return errors until it is configured.")
	} else {
		gateway = stripe.New(stripeKey)
	}

	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:       db,
		Payments: gateway,
		BaseURL:  baseURL,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting RentMyStuff API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
