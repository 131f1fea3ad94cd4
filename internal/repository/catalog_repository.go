package repository

import (
	"table_ordering/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository is the only place venue scoping is applied to catalog
// lookups; callers never query venues, tables or products directly.
type CatalogRepository interface {
	WithTx(tx *gorm.DB) CatalogRepository

	CreateVenue(venue *models.Venue) error
	GetVenueByID(id uint) (*models.Venue, error)
	GetActiveVenueBySlug(slug string) (*models.Venue, error)
	ListVenues(scope Scope, activeOnly bool) ([]models.Venue, error)
	CountActiveVenues(scope Scope) (int64, error)

	CreateTable(table *models.Table) error
	GetActiveTable(venueID uint, number string) (*models.Table, error)
	TableExists(venueID uint, number string) (bool, error)
	ListTables(venueID uint, activeOnly bool) ([]models.Table, error)

	CreateCategory(category *models.Category) error
	GetCategoryByID(id uint) (*models.Category, error)
	ListMenu(venueID uint) ([]models.Category, error)

	CreateProduct(product *models.Product) error
	GetProductByID(id uint) (*models.Product, error)
	GetAvailableProduct(id, venueID uint) (*models.Product, error)
	GetAvailableProducts(venueID uint, ids []uint) ([]models.Product, error)
	ListProducts(scope Scope, availableOnly bool) ([]models.Product, error)
	UpdateProductFields(id uint, fields map[string]interface{}) error
	DeleteProduct(id uint) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) WithTx(tx *gorm.DB) CatalogRepository {
	return &catalogRepository{db: tx}
}

func (r *catalogRepository) CreateVenue(venue *models.Venue) error {
	return r.db.Create(venue).Error
}

func (r *catalogRepository) GetVenueByID(id uint) (*models.Venue, error) {
	var venue models.Venue
	err := r.db.First(&venue, id).Error
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *catalogRepository) GetActiveVenueBySlug(slug string) (*models.Venue, error) {
	var venue models.Venue
	err := r.db.Where("slug = ? AND is_active = ?", slug, true).First(&venue).Error
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *catalogRepository) ListVenues(scope Scope, activeOnly bool) ([]models.Venue, error) {
	var venues []models.Venue
	query := scope.Apply(r.db.Model(&models.Venue{}), "venues.id")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name").Find(&venues).Error
	return venues, err
}

func (r *catalogRepository) CountActiveVenues(scope Scope) (int64, error) {
	var count int64
	err := scope.Apply(r.db.Model(&models.Venue{}), "venues.id").
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *catalogRepository) CreateTable(table *models.Table) error {
	return r.db.Create(table).Error
}

func (r *catalogRepository) GetActiveTable(venueID uint, number string) (*models.Table, error) {
	var table models.Table
	err := r.db.Where("venue_id = ? AND number = ? AND is_active = ?", venueID, number, true).First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *catalogRepository) TableExists(venueID uint, number string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Table{}).Where("venue_id = ? AND number = ?", venueID, number).Count(&count).Error
	return count > 0, err
}

func (r *catalogRepository) ListTables(venueID uint, activeOnly bool) ([]models.Table, error) {
	var tables []models.Table
	query := r.db.Where("venue_id = ?", venueID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("number").Find(&tables).Error
	return tables, err
}

func (r *catalogRepository) CreateCategory(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *catalogRepository) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListMenu returns active categories that hold at least one available
// product of the venue, each with those products preloaded.
func (r *catalogRepository) ListMenu(venueID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.
		Where("is_active = ?", true).
		Where("id IN (?)", r.db.Model(&models.Product{}).
			Select("category_id").
			Where("venue_id = ? AND is_available = ?", venueID, true)).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Where("venue_id = ? AND is_available = ?", venueID, true).Order("display_order, name")
		}).
		Order("display_order, name").
		Find(&categories).Error
	return categories, err
}

func (r *catalogRepository) CreateProduct(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *catalogRepository) GetProductByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) GetAvailableProduct(id, venueID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ? AND venue_id = ? AND is_available = ?", id, venueID, true).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) GetAvailableProducts(venueID uint, ids []uint) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Where("id IN ? AND venue_id = ? AND is_available = ?", ids, venueID, true).Find(&products).Error
	return products, err
}

func (r *catalogRepository) ListProducts(scope Scope, availableOnly bool) ([]models.Product, error) {
	var products []models.Product
	query := scope.Apply(r.db.Model(&models.Product{}), "products.venue_id").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Preload("Category").
		Preload("Venue")
	if availableOnly {
		query = query.Where("products.is_available = ?", true)
	}
	err := query.Order("categories.display_order, products.display_order, products.name").Find(&products).Error
	return products, err
}

func (r *catalogRepository) UpdateProductFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *catalogRepository) DeleteProduct(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}
