package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venue is a club or bar; every table, product and order belongs to one.
type Venue struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Table struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	VenueID   uint      `json:"venue_id" gorm:"not null;uniqueIndex:idx_venue_table_number"`
	Venue     *Venue    `json:"venue,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE"`
	Number    string    `json:"number" gorm:"type:varchar(10);not null;uniqueIndex:idx_venue_table_number"`
	QRCode    string    `json:"qr_code" gorm:"type:varchar(100);uniqueIndex"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null"`
	Slug         string `json:"slug" gorm:"uniqueIndex;not null"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	DisplayOrder int    `json:"display_order" gorm:"default:0"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	VenueID      uint            `json:"venue_id" gorm:"not null;index"`
	Venue        *Venue          `json:"venue,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE"`
	CategoryID   uint            `json:"category_id" gorm:"not null;index"`
	Category     *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	IsAvailable  bool            `json:"is_available" gorm:"default:true"`
	// nil means stock is not tracked and only IsAvailable applies.
	StockQuantity *int      `json:"stock_quantity"`
	DisplayOrder  int       `json:"display_order" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Product) IsInStock() bool {
	if p.StockQuantity == nil {
		return p.IsAvailable
	}
	return p.IsAvailable && *p.StockQuantity > 0
}
