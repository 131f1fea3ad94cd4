package repository

import (
	"table_ordering/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository interface {
	WithTx(tx *gorm.DB) ReportRepository

	UpsertSalesReport(report *models.SalesReport) error
	GetSalesReport(venueID uint, date string) (*models.SalesReport, error)
	ListSalesReports(scope Scope, from, to string) ([]models.SalesReport, error)
	ReplaceProductSales(venueID uint, date string, rows []models.ProductSales) error
	ListProductSales(scope Scope, from, to string, limit int) ([]models.ProductSales, error)
	TopProducts(scope Scope, limit int) ([]models.ProductSales, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) WithTx(tx *gorm.DB) ReportRepository {
	return &reportRepository{db: tx}
}

// UpsertSalesReport inserts the report or overwrites the existing row for
// the same (venue, date).
func (r *reportRepository) UpsertSalesReport(report *models.SalesReport) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "venue_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_orders",
			"total_revenue",
			"total_items_sold",
			"average_order_value",
			"peak_hour",
			"hourly_breakdown",
			"updated_at",
		}),
	}).Create(report).Error
}

func (r *reportRepository) GetSalesReport(venueID uint, date string) (*models.SalesReport, error) {
	var report models.SalesReport
	err := r.db.Where("venue_id = ? AND date = ?", venueID, date).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListSalesReports(scope Scope, from, to string) ([]models.SalesReport, error) {
	var reports []models.SalesReport
	err := scope.Apply(r.db.Model(&models.SalesReport{}), "sales_reports.venue_id").
		Where("date >= ? AND date <= ?", from, to).
		Order("date desc, venue_id").
		Find(&reports).Error
	return reports, err
}

// ReplaceProductSales overwrites every product row for (venue, date).
func (r *reportRepository) ReplaceProductSales(venueID uint, date string, rows []models.ProductSales) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venue_id = ? AND date = ?", venueID, date).Delete(&models.ProductSales{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&rows).Error
	})
}

func (r *reportRepository) ListProductSales(scope Scope, from, to string, limit int) ([]models.ProductSales, error) {
	var rows []models.ProductSales
	err := scope.Apply(r.db.Preload("Product"), "product_sales.venue_id").
		Where("date >= ? AND date <= ?", from, to).
		Order("revenue desc, id").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *reportRepository) TopProducts(scope Scope, limit int) ([]models.ProductSales, error) {
	var rows []models.ProductSales
	err := scope.Apply(r.db.Preload("Product"), "product_sales.venue_id").
		Order("revenue desc, id").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
