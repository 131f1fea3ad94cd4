package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"table_ordering/internal/middleware"
	"table_ordering/internal/repository"
	"table_ordering/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP replies. Unexpected errors are
// logged and reported without detail.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusOK, gin.H{"success": false, "warning": "Your cart is empty!"})
		return
	case errors.Is(err, services.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrTransaction):
		status, message = http.StatusInternalServerError, "Could not complete the request, please try again"
		log.Printf("Transaction error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	default:
		log.Printf("Error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func scopeFrom(c *gin.Context) (repository.Scope, bool) {
	scope, ok := middleware.GetScope(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return repository.Scope{}, false
	}
	return scope, true
}
