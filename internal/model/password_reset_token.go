package model

import "time"

// Account types a reset token can target
const (
	AccountVolunteer = "volunteer"
	AccountAdmin     = "admin"
)

// PasswordResetToken password_reset_tokens table, one live token per email
type PasswordResetToken struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"           json:"id"`
	Email       string    `gorm:"type:varchar(255);not null"         json:"email"`
	AccountType string    `gorm:"type:varchar(20);not null"          json:"account_type"`
	Token       string    `gorm:"type:varchar(128);not null"         json:"-"`
	ExpiresAt   time.Time `gorm:"not null"                           json:"expires_at"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName table name
func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

// Expired reports whether the token is no longer usable at now
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
