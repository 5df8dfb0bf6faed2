package models

import "github.com/shopspring/decimal"

// Product represents products table
type Product struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Code     string          `gorm:"type:varchar(50);not null" json:"code"`
	Name     string          `gorm:"type:varchar(200);not null;index" json:"name"`
	Qty      int             `gorm:"not null;default:0" json:"qty"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL string          `gorm:"type:varchar(255)" json:"image_url"`
	Category string          `gorm:"type:varchar(100)" json:"category"`
	Timestamps
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}
