package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/services"
)

// ShopHandler handles shop-related HTTP requests
type ShopHandler struct {
	shopService services.ShopService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService services.ShopService) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// List handles GET /shops
func (h *ShopHandler) List(c *gin.Context) {
	skip, limit := pagination(c, 100)

	shops, total, err := h.shopService.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err, "Shops not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops, "total": total})
}

// GetByID handles GET /shops/:id
func (h *ShopHandler) GetByID(c *gin.Context) {
	shop, err := h.shopService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Shop not found")
		return
	}
	c.JSON(http.StatusOK, shop)
}
