package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/services"
)

// MapHandler serves the geographic dashboard data
type MapHandler struct {
	shopService    services.ShopService
	receiptService services.ReceiptService
}

// NewMapHandler creates a new MapHandler
func NewMapHandler(shopService services.ShopService, receiptService services.ReceiptService) *MapHandler {
	return &MapHandler{
		shopService:    shopService,
		receiptService: receiptService,
	}
}

// Shops handles GET /map/shops
func (h *MapHandler) Shops(c *gin.Context) {
	shops, err := h.shopService.MapShops(c.Request.Context())
	if err != nil {
		respondError(c, err, "Shops not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

// Receipts handles GET /map/receipts with an optional date filter
func (h *MapHandler) Receipts(c *gin.Context) {
	receipts, err := h.receiptService.MapReceipts(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err, "Receipts not found")
		return
	}

	// Map pins only need a thin projection of each receipt.
	points := make([]gin.H, 0, len(receipts))
	for _, r := range receipts {
		points = append(points, gin.H{
			"id":               r.ID,
			"customer_phone":   r.CustomerPhone,
			"shop_name":        r.ShopName,
			"amount":           r.Amount,
			"upload_latitude":  r.UploadLatitude,
			"upload_longitude": r.UploadLongitude,
			"created_at":       r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"receipts": points})
}
