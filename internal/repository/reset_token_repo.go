package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
)

// ResetTokenRepository password reset token access
type ResetTokenRepository interface {
	// Upsert replaces any previous token for the same email
	Upsert(ctx context.Context, t *model.PasswordResetToken) error
	// GetValid returns the token only if it has not expired at now
	GetValid(ctx context.Context, token string, now time.Time) (*model.PasswordResetToken, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type resetTokenRepo struct {
	db *gorm.DB
}

// NewResetTokenRepo creates a ResetTokenRepository
func NewResetTokenRepo(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepo{db: db}
}

func (r *resetTokenRepo) Upsert(ctx context.Context, t *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"account_type", "token", "expires_at", "created_at"}),
		}).
		Create(t).Error
}

func (r *resetTokenRepo) GetValid(ctx context.Context, token string, now time.Time) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *resetTokenRepo) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&model.PasswordResetToken{}).Error
}

func (r *resetTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
