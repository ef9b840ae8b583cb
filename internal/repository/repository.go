package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository aggregate of all data access interfaces
type Repository struct {
	db *gorm.DB

	Admin      AdminRepository
	Volunteer  VolunteerRepository
	Project    ProjectRepository
	Timesheet  TimesheetRepository
	ResetToken ResetTokenRepository
}

// NewRepository wires every repository onto db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Admin:      NewAdminRepo(db),
		Volunteer:  NewVolunteerRepo(db),
		Project:    NewProjectRepo(db),
		Timesheet:  NewTimesheetRepo(db),
		ResetToken: NewResetTokenRepo(db),
	}
}

// BeginTx starts a transaction. Returns (nil, nil) when the aggregate has no
// database, which is how service tests run against in-memory repositories.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate bound to tx; a nil tx returns r unchanged
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// RunInTx runs fn inside one transaction. Any error or panic rolls back
// every write fn made.
func (r *Repository) RunInTx(ctx context.Context, fn func(txRepo *Repository) error) (err error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// Ping checks database reachability
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
