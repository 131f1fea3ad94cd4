package handlers

import (
	"net/http"
	"time"

	"table_ordering/internal/models"
	"table_ordering/internal/services"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type AdminHandler struct {
	catalogService services.CatalogService
	reportService  services.ReportService
	qrService      services.QRService
	userService    services.UserService
}

func NewAdminHandler(
	catalogService services.CatalogService,
	reportService services.ReportService,
	qrService services.QRService,
	userService services.UserService,
) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		reportService:  reportService,
		qrService:      qrService,
		userService:    userService,
	}
}

// dateRange reads from/to query dates, defaulting to the last 30 days.
func (h *AdminHandler) dateRange(c *gin.Context, from, to string) (time.Time, time.Time, bool) {
	loc := h.reportService.Location()
	now := time.Now().In(loc)
	end := now
	start := now.AddDate(0, 0, -29)

	var err error
	if to != "" {
		if end, err = time.ParseInLocation(dateLayout, to, loc); err != nil {
			badRequest(c, "Invalid 'to' date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
	}
	if from != "" {
		if start, err = time.ParseInLocation(dateLayout, from, loc); err != nil {
			badRequest(c, "Invalid 'from' date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
	}
	return start, end, true
}

func (h *AdminHandler) ListVenues(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	venues, err := h.catalogService.ListVenues(scope, c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "venues": venues})
}

func (h *AdminHandler) CreateVenue(c *gin.Context) {
	var input services.VenueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	venue, err := h.catalogService.CreateVenue(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "venue": venue})
}

func (h *AdminHandler) ListTables(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	venueID, ok := parseID(c, "id")
	if !ok {
		return
	}
	tables, err := h.catalogService.ListTables(scope, venueID, c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tables": tables})
}

func (h *AdminHandler) CreateTable(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	venueID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Number string `json:"number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Table number is required")
		return
	}

	table, err := h.catalogService.CreateTable(scope, venueID, req.Number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "table": table})
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var input services.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	category, err := h.catalogService.CreateCategory(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "category": category})
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	product, err := h.catalogService.CreateProduct(scope, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteProduct(scope, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	dashboard, err := h.reportService.Dashboard(scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dashboard": dashboard})
}

func (h *AdminHandler) Reports(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	from, to, ok := h.dateRange(c, c.Query("from"), c.Query("to"))
	if !ok {
		return
	}
	series, err := h.reportService.SalesSeries(scope, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	daily, err := h.reportService.StoredReports(scope, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": series, "daily_reports": daily})
}

func (h *AdminHandler) RebuildReports(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var req struct {
		VenueID uint   `json:"venue_id" binding:"required"`
		From    string `json:"from"`
		To      string `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "venue_id is required")
		return
	}
	venue, err := h.catalogService.GetVenue(scope, req.VenueID)
	if err != nil {
		respondError(c, err)
		return
	}
	from, to, ok := h.dateRange(c, req.From, req.To)
	if !ok {
		return
	}

	days, err := h.reportService.RebuildRange(c.Request.Context(), venue.ID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "venue": venue.Slug, "days": days})
}

func (h *AdminHandler) QRCodes(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	venueID, ok := parseID(c, "id")
	if !ok {
		return
	}
	codes, available, err := h.qrService.VenueQRCodes(c.Request.Context(), scope, venueID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"qr_available": available,
		"tables":       codes,
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	users, err := h.userService.GetAllUsers(scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required"`
		Password    string `json:"password" binding:"required"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Role        string `json:"role"`
		VenueID     *uint  `json:"venue_id"`
		EmployeeID  string `json:"employee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		VenueID:     req.VenueID,
		EmployeeID:  req.EmployeeID,
	}
	if err := h.userService.CreateUser(user, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var update services.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := h.userService.UpdateUser(id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(scope, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}
