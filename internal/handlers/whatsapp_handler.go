package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/services"
	"github.com/retailrewards/retail-rewards-backend/pkg/whatsapp"
)

// WhatsAppHandler bridges the relay service and the conversational surface
type WhatsAppHandler struct {
	whatsappService services.WhatsAppService
	relay           *whatsapp.Client
}

// NewWhatsAppHandler creates a new WhatsAppHandler
func NewWhatsAppHandler(whatsappService services.WhatsAppService, relay *whatsapp.Client) *WhatsAppHandler {
	return &WhatsAppHandler{
		whatsappService: whatsappService,
		relay:           relay,
	}
}

// Webhook handles POST /whatsapp/webhook, the relay's delivery path for
// every incoming message
func (h *WhatsAppHandler) Webhook(c *gin.Context) {
	var msg services.WebhookMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.whatsappService.HandleMessage(c.Request.Context(), msg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply, "success": true})
}

// QR handles GET /whatsapp/qr
func (h *WhatsAppHandler) QR(c *gin.Context) {
	qr, err := h.relay.GetQRCode(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"qr": nil, "connected": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr": qr})
}

// Status handles GET /whatsapp/status
func (h *WhatsAppHandler) Status(c *gin.Context) {
	status, err := h.relay.GetStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"connected": false, "status": "service_unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

type sendRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Message     string `json:"message" binding:"required"`
}

// Send handles POST /whatsapp/send
func (h *WhatsAppHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.relay.Send(c.Request.Context(), req.PhoneNumber, req.Message); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
