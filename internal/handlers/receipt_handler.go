package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/services"
)

// ReceiptHandler handles receipt ingestion and query HTTP requests
type ReceiptHandler struct {
	receiptService services.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService services.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// ProcessImage handles POST /receipts/process-image, the path the WhatsApp
// relay calls for every incoming receipt photo
func (h *ReceiptHandler) ProcessImage(c *gin.Context) {
	var req models.ProcessImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.receiptService.ProcessImage(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"receipt": receipt,
		"extraction": gin.H{
			"shop_name":     receipt.ShopName,
			"amount":        receipt.Amount,
			"items_count":   len(receipt.Items),
			"has_grounding": len(receipt.Grounding) > 0,
		},
	})
}

// Upload handles POST /receipts/upload, the web form path
func (h *ReceiptHandler) Upload(c *gin.Context) {
	var req models.UploadReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.receiptService.Upload(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Receipt not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "receipt": receipt})
}

// ListByCustomer handles GET /receipts/customer/:phoneNumber
func (h *ReceiptHandler) ListByCustomer(c *gin.Context) {
	skip, limit := pagination(c, 50)

	receipts, total, err := h.receiptService.ListByCustomer(c.Request.Context(), c.Param("phoneNumber"), skip, limit)
	if err != nil {
		respondError(c, err, "Receipts not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts, "total": total})
}

// Search handles GET /search/receipts, backed by the similarity index
func (h *ReceiptHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := h.receiptService.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, err, "Search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}

// GetByID handles GET /receipts/:id
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	receipt, err := h.receiptService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Receipt not found")
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// List handles GET /receipts with optional date/status/fraud_tier filters
func (h *ReceiptHandler) List(c *gin.Context) {
	skip, limit := pagination(c, 50)
	filter := models.ReceiptFilter{
		Date:      c.Query("date"),
		Status:    models.ReceiptStatus(c.Query("status")),
		FraudTier: models.FraudTier(c.Query("fraud_tier")),
	}

	receipts, total, err := h.receiptService.List(c.Request.Context(), filter, skip, limit)
	if err != nil {
		respondError(c, err, "Receipts not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts, "total": total})
}
