package model

// Admin admins table
type Admin struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	BaseModel
}

// TableName table name
func (Admin) TableName() string { return "admins" }
