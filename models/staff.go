package models

// Staff represents staff table
type Staff struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Code           string `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	FullName       string `gorm:"type:varchar(100);not null;index" json:"full_name"`
	Position       string `gorm:"type:varchar(100)" json:"position"`
	Phone          string `gorm:"type:varchar(20)" json:"phone"`
	Email          string `gorm:"type:varchar(100)" json:"email"`
	Address        string `gorm:"type:text" json:"address"`
	Gender         string `gorm:"type:varchar(10)" json:"gender"`
	ProfilePicture string `gorm:"type:varchar(255)" json:"profile_picture"`
	Timestamps
}

// TableName specifies the table name for Staff
func (Staff) TableName() string {
	return "staff"
}
