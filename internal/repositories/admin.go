package repositories

import (
	"context"
	"strings"
	"time"

	"iprofit/internal/models"

	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) error
	RecordFailedLogin(ctx context.Context, id uint, attempts int, lockedUntil *time.Time) error
	RecordLogin(ctx context.Context, id uint, ip string, at time.Time) error
	IncrementTokenVersion(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.Admin, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	return translate(r.db.WithContext(ctx).Create(admin).Error, ErrAdminNotFound)
}

func (r *adminRepository) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, translate(err, ErrAdminNotFound)
	}
	return &admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&admin).Error
	if err != nil {
		return nil, translate(err, ErrAdminNotFound)
	}
	return &admin, nil
}

func (r *adminRepository) Update(ctx context.Context, admin *models.Admin) error {
	return translate(r.db.WithContext(ctx).Save(admin).Error, ErrAdminNotFound)
}

func (r *adminRepository) RecordFailedLogin(ctx context.Context, id uint, attempts int, lockedUntil *time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_login_attempts": attempts,
			"locked_until":          lockedUntil,
		}).Error
	return translate(err, ErrAdminNotFound)
}

func (r *adminRepository) RecordLogin(ctx context.Context, id uint, ip string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"last_login_at":         at,
			"last_login_ip":         ip,
		}).Error
	return translate(err, ErrAdminNotFound)
}

func (r *adminRepository) IncrementTokenVersion(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
	return translate(err, ErrAdminNotFound)
}

func (r *adminRepository) List(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&admins).Error
	return admins, translate(err, ErrAdminNotFound)
}
