package models

// User represents users table
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"type:varchar(80);not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Timestamps
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
