package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/models"
	"github.com/retailrewards/retail-rewards-backend/internal/services"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customerService.GetOrCreate(c.Request.Context(), req.PhoneNumber, req.Name)
	if err != nil {
		respondError(c, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GetByPhone handles GET /customers/:phoneNumber
func (h *CustomerHandler) GetByPhone(c *gin.Context) {
	customer, err := h.customerService.GetByPhone(c.Request.Context(), c.Param("phoneNumber"))
	if err != nil {
		respondError(c, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	skip, limit := pagination(c, 50)

	customers, total, err := h.customerService.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err, "Customers not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers, "total": total})
}

// UpdateLocation handles POST /customers/location
func (h *CustomerHandler) UpdateLocation(c *gin.Context) {
	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.customerService.UpdateLocation(c.Request.Context(), req); err != nil {
		respondError(c, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
