package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/scheduler"
	"github.com/retailrewards/retail-rewards-backend/internal/services"
)

// AdminHandler handles operational endpoints: demo seeding and scheduler
// control
type AdminHandler struct {
	seedService services.SeedService
	drawService services.DrawService
	sched       *scheduler.Scheduler
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(seedService services.SeedService, drawService services.DrawService, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{
		seedService: seedService,
		drawService: drawService,
		sched:       sched,
	}
}

// SeedDemoData handles POST /demo/seed
func (h *AdminHandler) SeedDemoData(c *gin.Context) {
	summary, err := h.seedService.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err, "Seed failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Demo data seeded successfully with fraud scenarios",
		"counts": gin.H{
			"customers": summary.Customers,
			"shops":     summary.Shops,
			"receipts":  summary.Receipts,
		},
		"fraud_breakdown": summary.ByTier,
	})
}

// SchedulerStatus handles GET /scheduler/status
func (h *AdminHandler) SchedulerStatus(c *gin.Context) {
	running, nextRun := h.sched.Status()
	c.JSON(http.StatusOK, gin.H{
		"running": running,
		"jobs": []gin.H{
			{
				"id":       "daily-draw",
				"next_run": nextRun.Format(time.RFC3339),
			},
		},
	})
}

// TriggerDraw handles POST /scheduler/trigger-draw, the manual test hook.
// It draws over the current UTC day so far.
func (h *AdminHandler) TriggerDraw(c *gin.Context) {
	today := time.Now().UTC().Format("2006-01-02")
	result, err := h.drawService.RunDraw(c.Request.Context(), today)
	if err != nil {
		respondError(c, err, "Draw not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Draw triggered",
		"outcome": result.Outcome,
		"draw":    result.Draw,
	})
}
