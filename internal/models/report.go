package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SalesReport is a per venue per day aggregate, rebuildable from orders.
type SalesReport struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	VenueID           uint            `json:"venue_id" gorm:"not null;uniqueIndex:idx_report_venue_date"`
	Date              string          `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:idx_report_venue_date"` // YYYY-MM-DD
	TotalOrders       int             `json:"total_orders" gorm:"default:0"`
	TotalRevenue      decimal.Decimal `json:"total_revenue" gorm:"type:decimal(10,2);default:0"`
	TotalItemsSold    int             `json:"total_items_sold" gorm:"default:0"`
	AverageOrderValue decimal.Decimal `json:"average_order_value" gorm:"type:decimal(10,2);default:0"`
	PeakHour          *int            `json:"peak_hour"`
	HourlyBreakdown   datatypes.JSON  `json:"hourly_breakdown"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type ProductSales struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	VenueID      uint            `json:"venue_id" gorm:"not null;uniqueIndex:idx_product_sales_key"`
	ProductID    uint            `json:"product_id" gorm:"not null;uniqueIndex:idx_product_sales_key"`
	Product      *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Date         string          `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:idx_product_sales_key"`
	QuantitySold int             `json:"quantity_sold" gorm:"default:0"`
	Revenue      decimal.Decimal `json:"revenue" gorm:"type:decimal(10,2);default:0"`
	CreatedAt    time.Time       `json:"created_at"`
}
