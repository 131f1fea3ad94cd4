package services

import (
	"fmt"
	"strings"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"

	"github.com/shopspring/decimal"
)

type VenueInput struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type CategoryInput struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	DisplayOrder int    `json:"display_order"`
}

type ProductInput struct {
	VenueID       uint            `json:"venue_id" binding:"required"`
	CategoryID    uint            `json:"category_id" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity *int            `json:"stock_quantity"`
	DisplayOrder  int             `json:"display_order"`
}

// CatalogService exposes the venue-scoped catalog lookups consumed by the
// cart and order engine, plus staff/admin catalog maintenance.
type CatalogService interface {
	GetVenueBySlug(slug string) (*models.Venue, error)
	GetTable(venue *models.Venue, number string) (*models.Table, error)
	GetProduct(id uint, venue *models.Venue) (*models.Product, error)
	GetMenu(venue *models.Venue) ([]models.Category, error)

	ListVenues(scope repository.Scope, activeOnly bool) ([]models.Venue, error)
	GetVenue(scope repository.Scope, id uint) (*models.Venue, error)
	CreateVenue(input VenueInput) (*models.Venue, error)
	CreateTable(scope repository.Scope, venueID uint, number string) (*models.Table, error)
	ListTables(scope repository.Scope, venueID uint, activeOnly bool) ([]models.Table, error)
	CreateCategory(input CategoryInput) (*models.Category, error)
	CreateProduct(scope repository.Scope, input ProductInput) (*models.Product, error)
	ListProducts(scope repository.Scope, availableOnly bool) ([]models.Product, error)
	SetAvailability(scope repository.Scope, productID uint, available bool) (*models.Product, error)
	ToggleAvailability(scope repository.Scope, productID uint) (*models.Product, error)
	UpdateStock(scope repository.Scope, productID uint, quantity int) (*models.Product, error)
	DeleteProduct(scope repository.Scope, productID uint) error
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: catalogRepo}
}

func (s *catalogService) GetVenueBySlug(slug string) (*models.Venue, error) {
	venue, err := s.catalogRepo.GetActiveVenueBySlug(slug)
	if err != nil {
		return nil, notFound("venue", err)
	}
	return venue, nil
}

func (s *catalogService) GetTable(venue *models.Venue, number string) (*models.Table, error) {
	table, err := s.catalogRepo.GetActiveTable(venue.ID, number)
	if err != nil {
		return nil, notFound("table", err)
	}
	return table, nil
}

func (s *catalogService) GetProduct(id uint, venue *models.Venue) (*models.Product, error) {
	product, err := s.catalogRepo.GetAvailableProduct(id, venue.ID)
	if err != nil {
		return nil, notFound("product", err)
	}
	return product, nil
}

func (s *catalogService) GetMenu(venue *models.Venue) ([]models.Category, error) {
	return s.catalogRepo.ListMenu(venue.ID)
}

func (s *catalogService) ListVenues(scope repository.Scope, activeOnly bool) ([]models.Venue, error) {
	return s.catalogRepo.ListVenues(scope, activeOnly)
}

func (s *catalogService) GetVenue(scope repository.Scope, id uint) (*models.Venue, error) {
	venue, err := s.catalogRepo.GetVenueByID(id)
	if err != nil {
		return nil, notFound("venue", err)
	}
	if !scope.Allows(venue.ID) {
		return nil, fmt.Errorf("venue %w", ErrNotFound)
	}
	return venue, nil
}

func (s *catalogService) CreateVenue(input VenueInput) (*models.Venue, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" || strings.ContainsAny(slug, " /") {
		return nil, validationError("slug %q is not valid", input.Slug)
	}
	venue := &models.Venue{
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Address:     input.Address,
		Phone:       input.Phone,
		Email:       input.Email,
		IsActive:    true,
	}
	if err := s.catalogRepo.CreateVenue(venue); err != nil {
		return nil, duplicate(fmt.Sprintf("venue %q", slug), err)
	}
	return venue, nil
}

// CreateTable derives the QR identifier once, at creation; it is never
// recomputed if the table or venue changes later.
func (s *catalogService) CreateTable(scope repository.Scope, venueID uint, number string) (*models.Table, error) {
	number = strings.TrimSpace(number)
	if number == "" || len(number) > 10 || strings.Contains(number, "/") {
		return nil, validationError("table number %q is not valid", number)
	}
	venue, err := s.GetVenue(scope, venueID)
	if err != nil {
		return nil, err
	}
	exists, err := s.catalogRepo.TableExists(venue.ID, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, validationError("table %s already exists for %s", number, venue.Name)
	}

	table := &models.Table{
		VenueID:  venue.ID,
		Number:   number,
		QRCode:   fmt.Sprintf("%s_table_%s", venue.Slug, number),
		IsActive: true,
	}
	if err := s.catalogRepo.CreateTable(table); err != nil {
		return nil, duplicate(fmt.Sprintf("table %s for %s", number, venue.Name), err)
	}
	return table, nil
}

func (s *catalogService) ListTables(scope repository.Scope, venueID uint, activeOnly bool) ([]models.Table, error) {
	venue, err := s.GetVenue(scope, venueID)
	if err != nil {
		return nil, err
	}
	return s.catalogRepo.ListTables(venue.ID, activeOnly)
}

func (s *catalogService) CreateCategory(input CategoryInput) (*models.Category, error) {
	if input.DisplayOrder < 0 {
		return nil, validationError("display order must not be negative")
	}
	category := &models.Category{
		Name:         input.Name,
		Slug:         strings.ToLower(strings.TrimSpace(input.Slug)),
		Description:  input.Description,
		Icon:         input.Icon,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}
	if err := s.catalogRepo.CreateCategory(category); err != nil {
		return nil, duplicate(fmt.Sprintf("category %q", category.Slug), err)
	}
	return category, nil
}

var minPrice = decimal.New(1, -2)

func (s *catalogService) CreateProduct(scope repository.Scope, input ProductInput) (*models.Product, error) {
	if input.Price.LessThan(minPrice) {
		return nil, validationError("price must be at least %s", minPrice.StringFixed(2))
	}
	if !input.Price.Equal(input.Price.Round(2)) {
		return nil, validationError("price must have at most 2 decimal places")
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		return nil, validationError("stock quantity must not be negative")
	}
	venue, err := s.GetVenue(scope, input.VenueID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalogRepo.GetCategoryByID(input.CategoryID); err != nil {
		return nil, notFound("category", err)
	}

	product := &models.Product{
		VenueID:       venue.ID,
		CategoryID:    input.CategoryID,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		IsAvailable:   true,
		StockQuantity: input.StockQuantity,
		DisplayOrder:  input.DisplayOrder,
	}
	if err := s.catalogRepo.CreateProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListProducts(scope repository.Scope, availableOnly bool) ([]models.Product, error) {
	return s.catalogRepo.ListProducts(scope, availableOnly)
}

func (s *catalogService) scopedProduct(scope repository.Scope, productID uint) (*models.Product, error) {
	product, err := s.catalogRepo.GetProductByID(productID)
	if err != nil {
		return nil, notFound("product", err)
	}
	if !scope.Allows(product.VenueID) {
		return nil, fmt.Errorf("product %w", ErrNotFound)
	}
	return product, nil
}

func (s *catalogService) SetAvailability(scope repository.Scope, productID uint, available bool) (*models.Product, error) {
	product, err := s.scopedProduct(scope, productID)
	if err != nil {
		return nil, err
	}
	if err := s.catalogRepo.UpdateProductFields(product.ID, map[string]interface{}{"is_available": available}); err != nil {
		return nil, err
	}
	product.IsAvailable = available
	return product, nil
}

func (s *catalogService) ToggleAvailability(scope repository.Scope, productID uint) (*models.Product, error) {
	product, err := s.scopedProduct(scope, productID)
	if err != nil {
		return nil, err
	}
	return s.SetAvailability(scope, product.ID, !product.IsAvailable)
}

func (s *catalogService) UpdateStock(scope repository.Scope, productID uint, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, validationError("stock quantity must not be negative")
	}
	product, err := s.scopedProduct(scope, productID)
	if err != nil {
		return nil, err
	}
	if err := s.catalogRepo.UpdateProductFields(product.ID, map[string]interface{}{"stock_quantity": quantity}); err != nil {
		return nil, err
	}
	product.StockQuantity = &quantity
	return product, nil
}

func (s *catalogService) DeleteProduct(scope repository.Scope, productID uint) error {
	product, err := s.scopedProduct(scope, productID)
	if err != nil {
		return err
	}
	return s.catalogRepo.DeleteProduct(product.ID)
}
