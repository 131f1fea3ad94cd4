package repository

import (
	"table_ordering/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemRepository interface {
	WithTx(tx *gorm.DB) OrderItemRepository

	Create(orderItem *models.OrderItem) error
	GetByOrderAndProduct(orderID, productID uint) (*models.OrderItem, error)
	GetByOrderID(orderID uint) ([]models.OrderItem, error)
	Update(orderItem *models.OrderItem) error
	Delete(orderID, productID uint) (int64, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) WithTx(tx *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: tx}
}

func (r *orderItemRepository) Create(orderItem *models.OrderItem) error {
	return r.db.Omit(clause.Associations).Create(orderItem).Error
}

func (r *orderItemRepository) GetByOrderAndProduct(orderID, productID uint) (*models.OrderItem, error) {
	var orderItem models.OrderItem
	err := r.db.Where("order_id = ? AND product_id = ?", orderID, productID).First(&orderItem).Error
	if err != nil {
		return nil, err
	}
	return &orderItem, nil
}

func (r *orderItemRepository) GetByOrderID(orderID uint) ([]models.OrderItem, error) {
	var orderItems []models.OrderItem
	err := r.db.Where("order_id = ?", orderID).Order("id").Find(&orderItems).Error
	if err != nil {
		return nil, err
	}
	return orderItems, nil
}

func (r *orderItemRepository) Update(orderItem *models.OrderItem) error {
	return r.db.Omit(clause.Associations).Save(orderItem).Error
}

func (r *orderItemRepository) Delete(orderID, productID uint) (int64, error) {
	result := r.db.Where("order_id = ? AND product_id = ?", orderID, productID).Delete(&models.OrderItem{})
	return result.RowsAffected, result.Error
}
