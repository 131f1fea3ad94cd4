package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one product line of an order. UnitPrice is captured when the
// line is first written and is never refreshed from the live product price.
type OrderItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    uint            `json:"order_id" gorm:"not null;uniqueIndex:idx_order_product"`
	ProductID  uint            `json:"product_id" gorm:"not null;uniqueIndex:idx_order_product"`
	Product    *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Notes      string          `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ApplyQuantity sets the quantity and recomputes the line total.
func (i *OrderItem) ApplyQuantity(quantity int) {
	i.Quantity = quantity
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
