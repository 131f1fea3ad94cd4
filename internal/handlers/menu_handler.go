package handlers

import (
	"fmt"
	"net/http"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"
	"table_ordering/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const cartCookie = "cart_session"

// MenuHandler serves the public, per-table customer flow: menu, cart and
// checkout.
type MenuHandler struct {
	catalogService  services.CatalogService
	cartService     services.CartService
	checkoutService services.CheckoutService
	orderService    services.OrderService
	qrService       services.QRService
	cookieMaxAge    int
}

func NewMenuHandler(
	catalogService services.CatalogService,
	cartService services.CartService,
	checkoutService services.CheckoutService,
	orderService services.OrderService,
	qrService services.QRService,
	cookieMaxAge int,
) *MenuHandler {
	return &MenuHandler{
		catalogService:  catalogService,
		cartService:     cartService,
		checkoutService: checkoutService,
		orderService:    orderService,
		qrService:       qrService,
		cookieMaxAge:    cookieMaxAge,
	}
}

type cartItemRequest struct {
	ProductID uint        `json:"product_id" binding:"required"`
	Quantity  interface{} `json:"quantity"`
}

// cartKey identifies the caller's cart, issuing a session cookie on first
// contact.
func (h *MenuHandler) cartKey(c *gin.Context) services.CartKey {
	sessionID, err := c.Cookie(cartCookie)
	if err != nil || uuid.Validate(sessionID) != nil {
		sessionID = uuid.NewString()
		c.SetCookie(cartCookie, sessionID, h.cookieMaxAge, "/", "", false, true)
	}
	return services.CartKey{
		SessionID:   sessionID,
		VenueSlug:   c.Param("venue"),
		TableNumber: c.Param("table"),
	}
}

// resolve loads the active venue and table named in the path.
func (h *MenuHandler) resolve(c *gin.Context) (*models.Venue, *models.Table, bool) {
	venue, err := h.catalogService.GetVenueBySlug(c.Param("venue"))
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	table, err := h.catalogService.GetTable(venue, c.Param("table"))
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return venue, table, true
}

func (h *MenuHandler) ListVenues(c *gin.Context) {
	venues, err := h.catalogService.ListVenues(repository.AllVenues(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "venues": venues})
}

func (h *MenuHandler) GetMenu(c *gin.Context) {
	venue, table, ok := h.resolve(c)
	if !ok {
		return
	}
	categories, err := h.catalogService.GetMenu(venue)
	if err != nil {
		respondError(c, err)
		return
	}
	count, err := h.cartService.Count(c.Request.Context(), h.cartKey(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"venue":      venue,
		"table":      table,
		"table_url":  h.qrService.TableURL(venue, table),
		"categories": categories,
		"cart_count": count,
	})
}

func (h *MenuHandler) AddToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	quantity, err := services.ParseQuantity(req.Quantity, 1)
	if err != nil {
		respondError(c, err)
		return
	}
	venue, _, ok := h.resolve(c)
	if !ok {
		return
	}

	count, err := h.cartService.Add(c.Request.Context(), h.cartKey(c), venue, req.ProductID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Added to cart",
		"cart_count": count,
	})
}

func (h *MenuHandler) UpdateCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	quantity, err := services.ParseQuantity(req.Quantity, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, _, ok := h.resolve(c); !ok {
		return
	}

	count, err := h.cartService.SetQuantity(c.Request.Context(), h.cartKey(c), req.ProductID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart_count": count})
}

func (h *MenuHandler) RemoveFromCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	if _, _, ok := h.resolve(c); !ok {
		return
	}

	count, err := h.cartService.Remove(c.Request.Context(), h.cartKey(c), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart_count": count})
}

func (h *MenuHandler) GetCart(c *gin.Context) {
	summary, err := h.checkoutService.Summary(c.Request.Context(), h.cartKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"venue":   summary.Venue,
		"table":   summary.Table,
		"cart":    summary.Cart,
	})
}

func (h *MenuHandler) Checkout(c *gin.Context) {
	var input services.CheckoutInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Invalid request format")
			return
		}
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), h.cartKey(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Order %s placed successfully!", order.OrderNumber),
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"redirect":     fmt.Sprintf("/api/orders/%d/confirmation", order.ID),
	})
}

func (h *MenuHandler) OrderConfirmation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetConfirmation(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}
