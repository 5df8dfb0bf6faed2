package models

// Customer represents customers table
type Customer struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FullName string `gorm:"type:varchar(100);not null;index" json:"full_name"`
	Code     string `gorm:"type:varchar(20)" json:"code"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	Email    string `gorm:"type:varchar(100)" json:"email"`
	Address  string `gorm:"type:text" json:"address"`
	Gender   string `gorm:"type:varchar(10)" json:"gender"`
	Timestamps
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}
