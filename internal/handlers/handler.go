// Package handlers contains the Gin HTTP handlers for the public API and the
// admin surface. Handlers translate transport concerns only; all business
// logic lives in the services layer.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/retailrewards/retail-rewards-backend/internal/apperrors"
)

// pagination reads skip/limit query params with sane bounds.
func pagination(c *gin.Context, defaultLimit int64) (skip, limit int64) {
	skip, _ = strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 500 {
		limit = defaultLimit
	}
	return skip, limit
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
	case apperrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
