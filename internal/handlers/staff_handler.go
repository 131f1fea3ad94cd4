package handlers

import (
	"net/http"

	"table_ordering/internal/services"

	"github.com/gin-gonic/gin"
)

type StaffHandler struct {
	orderService   services.OrderService
	catalogService services.CatalogService
}

func NewStaffHandler(orderService services.OrderService, catalogService services.CatalogService) *StaffHandler {
	return &StaffHandler{
		orderService:   orderService,
		catalogService: catalogService,
	}
}

func (h *StaffHandler) ListActiveOrders(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	active, err := h.orderService.ActiveOrders(scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"received":    active.Received,
		"in_progress": active.InProgress,
		"ready":       active.Ready,
	})
}

func (h *StaffHandler) GetOrder(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	history, err := h.orderService.StatusHistory(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"order":             order,
		"status_history":    history,
		"valid_transitions": h.orderService.ValidTransitions(order.Status),
	})
}

func (h *StaffHandler) UpdateOrderStatus(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,order_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid status")
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), scope, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"new_status": order.Status,
		"order":      order,
	})
}

func (h *StaffHandler) UpdatePaymentStatus(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		PaymentStatus string `json:"payment_status" binding:"required,payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid payment status")
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), scope, id, req.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *StaffHandler) UpdateStaffNotes(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	order, err := h.orderService.UpdateStaffNotes(c.Request.Context(), scope, id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *StaffHandler) SetItemQuantity(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}
	var req struct {
		Quantity interface{} `json:"quantity"`
		Notes    string      `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	quantity, err := services.ParseQuantity(req.Quantity, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.orderService.SetItemQuantity(c.Request.Context(), scope, orderID, productID, quantity, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *StaffHandler) RemoveItem(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	order, err := h.orderService.RemoveItem(c.Request.Context(), scope, orderID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *StaffHandler) ListProducts(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	products, err := h.catalogService.ListProducts(scope, c.Query("available") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (h *StaffHandler) ToggleProduct(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.ToggleAvailability(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"is_available": product.IsAvailable,
		"product_name": product.Name,
	})
}

func (h *StaffHandler) SetProductAvailability(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "is_available must be true or false")
		return
	}

	product, err := h.catalogService.SetAvailability(scope, id, *req.IsAvailable)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"is_available": product.IsAvailable,
		"product_name": product.Name,
	})
}

func (h *StaffHandler) UpdateStock(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		StockQuantity *int `json:"stock_quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "stock_quantity must be an integer")
		return
	}

	product, err := h.catalogService.UpdateStock(scope, id, *req.StockQuantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"stock_quantity": product.StockQuantity,
		"is_in_stock":    product.IsInStock(),
	})
}
