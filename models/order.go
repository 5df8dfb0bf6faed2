package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents orders table. Total is always the sum of its item subtotals.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	CustomerID uint            `gorm:"not null;index" json:"customer_id"`
	OrderDate  time.Time       `gorm:"not null;index" json:"order_date"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	Timestamps

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"items,omitempty"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// OrderItem represents order_items table. Price is a snapshot of the
// product price when the order was written.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
}

// TableName specifies the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}
