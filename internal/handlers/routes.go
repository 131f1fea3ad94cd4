package handlers

import (
	"table_ordering/internal/middleware"
	"table_ordering/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the customer, staff and admin APIs on router.
func SetupRoutes(router *gin.Engine, menu *MenuHandler, staff *StaffHandler, admin *AdminHandler, auth *AuthHandler, tokens *middleware.TokenManager, users middleware.UserLookup) {
	api := router.Group("/api")
	{
		api.POST("/auth/login", auth.Login)

		// Customer flow
		api.GET("/venues", menu.ListVenues)
		api.GET("/orders/:id/confirmation", menu.OrderConfirmation)

		table := api.Group("/:venue/table/:table")
		table.GET("/menu", menu.GetMenu)
		table.GET("/cart", menu.GetCart)
		table.POST("/cart/add", menu.AddToCart)
		table.POST("/cart/update", menu.UpdateCart)
		table.POST("/cart/remove", menu.RemoveFromCart)
		table.POST("/checkout", menu.Checkout)
	}

	staffGroup := api.Group("/staff", middleware.AuthRequired(tokens, users))
	{
		staffGroup.GET("/orders", staff.ListActiveOrders)
		staffGroup.GET("/orders/:id", staff.GetOrder)
		staffGroup.POST("/orders/:id/status", staff.UpdateOrderStatus)
		staffGroup.POST("/orders/:id/payment", staff.UpdatePaymentStatus)
		staffGroup.POST("/orders/:id/notes", staff.UpdateStaffNotes)
		staffGroup.PUT("/orders/:id/items/:product_id", staff.SetItemQuantity)
		staffGroup.DELETE("/orders/:id/items/:product_id", staff.RemoveItem)

		staffGroup.GET("/products", staff.ListProducts)
		staffGroup.POST("/products/:id/toggle", staff.ToggleProduct)
		staffGroup.POST("/products/:id/availability", staff.SetProductAvailability)
		staffGroup.POST("/products/:id/stock", staff.UpdateStock)
	}

	adminGroup := api.Group("/admin", middleware.AuthRequired(tokens, users), middleware.RoleRequired(models.Admin))
	{
		adminGroup.GET("/dashboard", admin.Dashboard)
		adminGroup.GET("/reports", admin.Reports)
		adminGroup.POST("/reports/rebuild", admin.RebuildReports)

		adminGroup.GET("/venues", admin.ListVenues)
		adminGroup.POST("/venues", admin.CreateVenue)
		adminGroup.GET("/venues/:id/tables", admin.ListTables)
		adminGroup.POST("/venues/:id/tables", admin.CreateTable)
		adminGroup.GET("/venues/:id/qr-codes", admin.QRCodes)
		adminGroup.POST("/categories", admin.CreateCategory)
		adminGroup.POST("/products", admin.CreateProduct)
		adminGroup.DELETE("/products/:id", admin.DeleteProduct)

		adminGroup.GET("/users", admin.ListUsers)
		adminGroup.POST("/users", admin.CreateUser)
		adminGroup.PUT("/users/:id", admin.UpdateUser)
		adminGroup.DELETE("/users/:id", admin.DeleteUser)
	}
}
