package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	VenueID       uint            `json:"venue_id" gorm:"not null;index"`
	Venue         *Venue          `json:"venue,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE"`
	TableID       uint            `json:"table_id" gorm:"not null;index"`
	Table         *Table          `json:"table,omitempty" gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
	OrderNumber   string          `json:"order_number" gorm:"type:varchar(20);uniqueIndex;not null"`
	Status        string          `json:"status" gorm:"type:varchar(20);default:'received';index"`
	PaymentStatus string          `json:"payment_status" gorm:"type:varchar(20);default:'pending'"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(50)"`
	CustomerName  string          `json:"customer_name" gorm:"type:varchar(100)"`
	CustomerPhone string          `json:"customer_phone" gorm:"type:varchar(20)"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null;default:0"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:decimal(10,2);not null;default:0"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0"`
	Notes         string          `json:"notes" gorm:"type:text"`
	StaffNotes    string          `json:"staff_notes" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeliveredAt   *time.Time      `json:"delivered_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderStatus string

const (
	OrderReceived   OrderStatus = "received"
	OrderInProgress OrderStatus = "in_progress"
	OrderReady      OrderStatus = "ready"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderReceived, OrderInProgress, OrderReady, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further lifecycle progress is expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentPaidAtTable PaymentStatus = "paid_at_table"
	PaymentPaidOnline  PaymentStatus = "paid_online"
	PaymentFailed      PaymentStatus = "failed"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPaidAtTable, PaymentPaidOnline, PaymentFailed}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// OrderStatusHistory is an audit row written for every status change.
type OrderStatusHistory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	FromStatus string    `json:"from_status" gorm:"type:varchar(20)"`
	ToStatus   string    `json:"to_status" gorm:"type:varchar(20);not null"`
	ChangedBy  uint      `json:"changed_by"`
	CreatedAt  time.Time `json:"created_at"`
}
