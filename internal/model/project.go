package model

import "time"

// Project projects table
type Project struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name      string    `gorm:"type:varchar(255);not null"         json:"name"`
	CreatedBy *int64    `json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName table name
func (Project) TableName() string { return "projects" }
