package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/config"
	"github.com/retailrewards/retail-rewards-backend/internal/handlers"
	"github.com/retailrewards/retail-rewards-backend/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Customer  *handlers.CustomerHandler
	Receipt   *handlers.ReceiptHandler
	Fraud     *handlers.FraudHandler
	Shop      *handlers.ShopHandler
	Draw      *handlers.DrawHandler
	Analytics *handlers.AnalyticsHandler
	Map       *handlers.MapHandler
	WhatsApp  *handlers.WhatsAppHandler
	Admin     *handlers.AdminHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Retail Rewards Platform API", "version": "1.0.0"})
		})
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
		}

		// Customer self-service surface, keyed by phone number
		public.POST("/customers", h.Customer.Create)
		public.GET("/customers/:phoneNumber", h.Customer.GetByPhone)
		public.GET("/customers/:phoneNumber/receipts", h.Receipt.ListByCustomer)
		public.GET("/customers/:phoneNumber/wins", h.Draw.Wins)
		public.POST("/customers/location", h.Customer.UpdateLocation)

		// Receipt ingestion paths
		public.POST("/receipts/process-image", h.Receipt.ProcessImage)
		public.POST("/receipts/upload", h.Receipt.Upload)

		// WhatsApp relay surface
		whatsapp := public.Group("/whatsapp")
		{
			whatsapp.POST("/webhook", h.WhatsApp.Webhook)
			whatsapp.GET("/qr", h.WhatsApp.QR)
			whatsapp.GET("/status", h.WhatsApp.Status)
			whatsapp.POST("/send", h.WhatsApp.Send)
		}
	}

	// Admin routes
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.GET("/customers", h.Customer.List)

		receipts := protected.Group("/receipts")
		{
			receipts.GET("", h.Receipt.List)
			receipts.GET("/:id", h.Receipt.GetByID)
		}
		// Lives outside /receipts so the static segment cannot collide with
		// the :id parameter.
		protected.GET("/search/receipts", h.Receipt.Search)

		fraud := protected.Group("/fraud")
		{
			fraud.GET("/flagged", h.Fraud.Flagged)
			fraud.GET("/stats", h.Fraud.Stats)
			fraud.GET("/thresholds", h.Fraud.Thresholds)
			fraud.POST("/review/:id", h.Fraud.Review)
		}

		shops := protected.Group("/shops")
		{
			shops.GET("", h.Shop.List)
			shops.GET("/:id", h.Shop.GetByID)
		}

		draws := protected.Group("/draws")
		{
			draws.GET("", h.Draw.List)
			draws.GET("/:date", h.Draw.GetByDate)
			draws.POST("/run", h.Draw.Run)
		}

		analytics := protected.Group("/analytics")
		{
			analytics.GET("/overview", h.Analytics.Overview)
			analytics.GET("/spending-by-day", h.Analytics.SpendingByDay)
			analytics.GET("/popular-shops", h.Analytics.PopularShops)
			analytics.GET("/top-spenders", h.Analytics.TopSpenders)
			analytics.GET("/receipts-by-hour", h.Analytics.ReceiptsByHour)
			analytics.GET("/spending-by-shop", h.Analytics.SpendingByShop)
		}

		mapGroup := protected.Group("/map")
		{
			mapGroup.GET("/shops", h.Map.Shops)
			mapGroup.GET("/receipts", h.Map.Receipts)
		}

		protected.POST("/demo/seed", h.Admin.SeedDemoData)
		protected.GET("/scheduler/status", h.Admin.SchedulerStatus)
		protected.POST("/scheduler/trigger-draw", h.Admin.TriggerDraw)
	}

	return router
}
