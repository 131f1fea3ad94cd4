package repository

import (
	"table_ordering/internal/models"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository

	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetScoped(scope Scope, id uint) (*models.Order, error)
	LockByID(id uint) (*models.Order, error)
	UpdateFields(id uint, fields map[string]interface{}) error
	ListByStatuses(scope Scope, statuses []string) ([]models.Order, error)
	ListRecent(scope Scope, limit int) ([]models.Order, error)
	ListByVenueAndRange(venueID uint, start, end time.Time) ([]models.Order, error)
	ListByRange(scope Scope, start, end time.Time) ([]models.Order, error)
	Totals(scope Scope, start, end *time.Time) (OrderTotals, error)
	AddStatusHistory(history *models.OrderStatusHistory) error
	GetStatusHistory(orderID uint) ([]models.OrderStatusHistory, error)
}

// OrderTotals is an order count with the summed order totals. Cancelled
// orders are not counted.
type OrderTotals struct {
	Count   int64
	Revenue decimal.Decimal
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Omit(clause.Associations).Create(order).Error
}

func (r *orderRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Venue").
		Preload("Table").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id")
		}).
		Preload("Items.Product")
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.preloaded().First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetScoped(scope Scope, id uint) (*models.Order, error) {
	var order models.Order
	err := scope.Apply(r.preloaded(), "orders.venue_id").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LockByID loads the order row with a row lock held until the surrounding
// transaction ends. Drivers without row locks ignore the clause.
func (r *orderRepository) LockByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepository) ListByStatuses(scope Scope, statuses []string) ([]models.Order, error) {
	var orders []models.Order
	err := scope.Apply(r.preloaded(), "orders.venue_id").
		Where("status IN ?", statuses).
		Order("created_at desc, id desc").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListRecent(scope Scope, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := scope.Apply(r.db.Preload("Table").Preload("Venue"), "orders.venue_id").
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListByVenueAndRange(venueID uint, start, end time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Preload("Items").
		Where("venue_id = ? AND created_at >= ? AND created_at < ?", venueID, start.UTC(), end.UTC()).
		Order("created_at").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListByRange(scope Scope, start, end time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := scope.Apply(r.db.Model(&models.Order{}), "orders.venue_id").
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Order("created_at").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Totals(scope Scope, start, end *time.Time) (OrderTotals, error) {
	var totals OrderTotals
	query := scope.Apply(r.db.Model(&models.Order{}), "orders.venue_id").
		Where("status <> ?", string(models.OrderCancelled))
	if start != nil {
		query = query.Where("created_at >= ?", start.UTC())
	}
	if end != nil {
		query = query.Where("created_at < ?", end.UTC())
	}
	err := query.Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").Scan(&totals).Error
	return totals, err
}

func (r *orderRepository) AddStatusHistory(history *models.OrderStatusHistory) error {
	return r.db.Create(history).Error
}

func (r *orderRepository) GetStatusHistory(orderID uint) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := r.db.Where("order_id = ?", orderID).Order("id").Find(&history).Error
	return history, err
}
