package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/services"
)

// AnalyticsHandler handles dashboard statistics HTTP requests
type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// Overview handles GET /analytics/overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.analyticsService.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err, "Overview not found")
		return
	}
	c.JSON(http.StatusOK, overview)
}

// SpendingByDay handles GET /analytics/spending-by-day
func (h *AnalyticsHandler) SpendingByDay(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	data, err := h.analyticsService.SpendingByDay(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, "Data not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// PopularShops handles GET /analytics/popular-shops
func (h *AnalyticsHandler) PopularShops(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	shops, err := h.analyticsService.PopularShops(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Shops not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

// TopSpenders handles GET /analytics/top-spenders
func (h *AnalyticsHandler) TopSpenders(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	customers, err := h.analyticsService.TopSpenders(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Customers not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// ReceiptsByHour handles GET /analytics/receipts-by-hour
func (h *AnalyticsHandler) ReceiptsByHour(c *gin.Context) {
	data, err := h.analyticsService.ReceiptsByHour(c.Request.Context())
	if err != nil {
		respondError(c, err, "Data not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// SpendingByShop handles GET /analytics/spending-by-shop
func (h *AnalyticsHandler) SpendingByShop(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	shops, err := h.analyticsService.SpendingByShop(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Shops not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}
