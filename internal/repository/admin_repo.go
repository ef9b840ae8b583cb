package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
)

// AdminRepository admin account access
type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	GetByID(ctx context.Context, id int64) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type adminRepo struct {
	db *gorm.DB
}

// NewAdminRepo creates an AdminRepository
func NewAdminRepo(db *gorm.DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) Create(ctx context.Context, admin *model.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepo) GetByID(ctx context.Context, id int64) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Admin{}).Count(&n).Error
	return n, err
}

func (r *adminRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Admin{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
