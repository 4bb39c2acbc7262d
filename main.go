package main

import (
	"log"

	"housetab-backend/config"
	"housetab-backend/database"
	"housetab-backend/handlers"
	"housetab-backend/middleware"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.Load()

	// Connect to database
	database.Connect()

	// Connect to Redis (optional; balance caching degrades gracefully)
	database.ConnectRedis()

	// Setup Gin router
	router := gin.Default()

	// Middleware
	router.Use(middleware.CORSMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		// Users
		api.GET("/users/me", handlers.GetProfile)
		api.PUT("/users/me", handlers.UpdateProfile)
		api.PUT("/users/me/fcm-token", handlers.UpdateFCMToken)
		api.GET("/users/search", handlers.SearchUsers)

		// Households
		api.POST("/households", handlers.CreateHousehold)
		api.GET("/households", handlers.GetHouseholds)
		api.GET("/households/:id", handlers.GetHousehold)
		api.PUT("/households/:id", handlers.UpdateHousehold)
		api.POST("/households/:id/members", handlers.AddMember)
		api.DELETE("/households/:id/members/:userId", handlers.RemoveMember)
		api.POST("/households/:id/invite", handlers.InviteToHouseholdHandler)

		// Shopping list
		api.GET("/households/:id/shopping-items", handlers.GetShoppingItems)
		api.POST("/households/:id/shopping-items", handlers.CreateShoppingItem)
		api.PUT("/shopping-items/:id", handlers.UpdateShoppingItem)
		api.DELETE("/shopping-items/:id", handlers.DeleteShoppingItem)
		api.PUT("/shopping-items/:id/status", handlers.UpdateShoppingItemStatus)

		// Expense-entry sessions
		api.POST("/households/:id/receipts", handlers.StartReceiptSession)
		api.GET("/receipts/:sessionId", handlers.GetReceiptSession)
		api.POST("/receipts/:sessionId/items", handlers.AddReceiptItem)
		api.PUT("/receipts/:sessionId/items/:itemId", handlers.UpdateReceiptItem)
		api.DELETE("/receipts/:sessionId/items/:itemId", handlers.RemoveReceiptItem)
		api.PUT("/receipts/:sessionId/items/:itemId/assign", handlers.AssignReceiptItem)
		api.GET("/receipts/:sessionId/candidates", handlers.GetMatchCandidates)
		api.POST("/receipts/:sessionId/candidates/:candidateId/resolve", handlers.ResolveMatchCandidate)
		api.POST("/receipts/:sessionId/post", handlers.PostReceipt)

		// Transactions
		api.GET("/households/:id/transactions", handlers.GetTransactions)
		api.GET("/transactions/:id", handlers.GetTransaction)

		// Balances and debts
		api.GET("/households/:id/balances", handlers.GetHouseholdBalances)
		api.GET("/balances", handlers.GetOverallBalances)
		api.GET("/debts", handlers.GetDebts)
		api.PUT("/debts/:id/settle", handlers.SettleDebt)

		// Activity feed
		api.GET("/households/:id/activity", handlers.GetHouseholdActivity)
		api.GET("/activity", handlers.GetActivityFeed)
	}

	// Start server
	port := config.AppConfig.Port
	log.Printf("🚀 Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
