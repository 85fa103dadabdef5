package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/services"
)

// FraudHandler handles fraud review HTTP requests
type FraudHandler struct {
	fraudService services.FraudService
}

// NewFraudHandler creates a new FraudHandler
func NewFraudHandler(fraudService services.FraudService) *FraudHandler {
	return &FraudHandler{
		fraudService: fraudService,
	}
}

// Flagged handles GET /fraud/flagged
func (h *FraudHandler) Flagged(c *gin.Context) {
	skip, limit := pagination(c, 50)

	receipts, total, err := h.fraudService.Flagged(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err, "Receipts not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts, "total": total})
}

// Stats handles GET /fraud/stats
func (h *FraudHandler) Stats(c *gin.Context) {
	stats, err := h.fraudService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Stats not found")
		return
	}
	c.JSON(http.StatusOK, stats)
}

type reviewRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// Review handles POST /fraud/review/:id
func (h *FraudHandler) Review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.fraudService.Review(c.Request.Context(), c.Param("id"), services.ReviewDecision{
		Action: req.Action,
		Reason: req.Reason,
	})
	if err != nil {
		respondError(c, err, "Receipt not found")
		return
	}

	message := "Receipt approved and added to draw pool"
	if req.Action == "reject" {
		message = "Receipt rejected and removed from draw pool"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "receipt": receipt})
}

// Thresholds handles GET /fraud/thresholds
func (h *FraudHandler) Thresholds(c *gin.Context) {
	t := h.fraudService.Thresholds()
	c.JSON(http.StatusOK, gin.H{
		"valid_km":      t.ValidKm,
		"review_km":     t.ReviewKm,
		"suspicious_km": t.SuspiciousKm,
		"description": gin.H{
			"valid":      fmt.Sprintf("< %.0fkm - Auto-approved", t.ValidKm),
			"review":     fmt.Sprintf("%.0f-%.0fkm - Manual review suggested", t.ValidKm, t.ReviewKm),
			"suspicious": fmt.Sprintf("%.0f-%.0fkm - Suspicious, needs review", t.ReviewKm, t.SuspiciousKm),
			"flagged":    fmt.Sprintf("> %.0fkm - Likely fraud, blocked from draw", t.SuspiciousKm),
		},
	})
}
