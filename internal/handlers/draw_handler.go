package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/services"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{
		drawService: drawService,
	}
}

// Run handles POST /draws/run. The date defaults to the current UTC day.
func (h *DrawHandler) Run(c *gin.Context) {
	drawDate := c.Query("draw_date")
	if drawDate == "" {
		drawDate = time.Now().UTC().Format("2006-01-02")
	}

	result, err := h.drawService.RunDraw(c.Request.Context(), drawDate)
	if err != nil {
		respondError(c, err, "Draw not found")
		return
	}

	switch result.Outcome {
	case models.DrawOutcomeAlreadyCompleted:
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Draw already completed for this date",
			"draw":    result.Draw,
		})
	case models.DrawOutcomeNoReceipts:
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "No eligible receipts for this date",
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"draw":    result.Draw,
			"winner": gin.H{
				"phone":      result.Winner.CustomerPhone,
				"receipt_id": result.Winner.ID,
				"amount":     result.Draw.PrizeAmount,
				"shop":       result.Winner.ShopName,
			},
		})
	}
}

// List handles GET /draws
func (h *DrawHandler) List(c *gin.Context) {
	skip, limit := pagination(c, 30)

	draws, total, err := h.drawService.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err, "Draws not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"draws": draws, "total": total})
}

// GetByDate handles GET /draws/:date
func (h *DrawHandler) GetByDate(c *gin.Context) {
	draw, err := h.drawService.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err, "Draw not found")
		return
	}
	c.JSON(http.StatusOK, draw)
}

// Wins handles GET /draws/winner/:phoneNumber
func (h *DrawHandler) Wins(c *gin.Context) {
	wins, err := h.drawService.WinsByPhone(c.Request.Context(), c.Param("phoneNumber"))
	if err != nil {
		respondError(c, err, "Wins not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"wins": wins, "total": len(wins)})
}
