package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/rentmystuff/rentmystuff-golang/internal/handlers"
	"github.com/rentmystuff/rentmystuff-golang/internal/middleware"
)

// CORSMiddleware tells the browser the frontend origin is allowed to
// send requests (including the Authorization header) to this API.
func CORSMiddleware() gin.HandlerFunc {
	frontendOrigin := os.Getenv("FRONTEND_ORIGIN")
	if frontendOrigin == "" {
		frontendOrigin = "http://localhost:3000"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", frontendOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204 reply
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must run before everything else
	router.Use(CORSMiddleware())

	// Uploaded item images are served directly
	router.Static("/uploads", "./uploads")

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)

		// --- Public Item Routes ---
		v1.GET("/items", h.GetAllItems)
		v1.GET("/items/:id", h.GetItem)

		// --- Session Verification (Public) ---
		// The success page polls this before the renter is re-authenticated.
		v1.GET("/checkout/session", h.GetCheckoutSession)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.GET("/profile/me", h.GetMe)

			// --- Item Management ---
			auth.POST("/items", h.CreateItem)
			auth.GET("/items/mine", h.GetMyItems)
			auth.PATCH("/items/:id/availability", h.ToggleItemAvailability)
			auth.DELETE("/items/:id", h.DeleteItem)

			// --- Image Upload ---
			auth.POST("/upload", h.UploadFile)

			// --- Cart Routes ---
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart/items", h.AddToCart)
			auth.PUT("/cart/items/:item_id", h.UpdateCartItem)
			auth.DELETE("/cart/items/:item_id", h.DeleteCartItem)
			auth.DELETE("/cart", h.ClearCart)

			// --- Checkout Routes ---
			auth.POST("/checkout", h.CreateCheckoutSession)
			auth.POST("/checkout/finalize", h.FinalizeOrder)

			// --- Order Routes ---
			auth.GET("/orders/rentals", h.GetMyRentals)
			auth.GET("/orders/earnings", h.GetMyEarnings)
			auth.GET("/orders/:id", h.GetOrderDetails)

			// --- Dashboard ---
			auth.GET("/dashboard-stats", h.GetDashboardStats)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
		}
	}

	return router
}
