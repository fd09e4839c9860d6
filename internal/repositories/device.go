package repositories

import (
	"context"

	"iprofit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceRepository interface {
	// CountAccounts returns how many distinct users are bound to deviceID.
	CountAccounts(ctx context.Context, deviceID string) (int64, error)
	IsBoundTo(ctx context.Context, deviceID string, userID uint) (bool, error)
	IsBlocked(ctx context.Context, deviceID string) (bool, error)
	Register(ctx context.Context, device *models.Device) error
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) CountAccounts(ctx context.Context, deviceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Device{}).
		Where("device_id = ?", deviceID).
		Distinct("user_id").
		Count(&count).Error
	return count, translate(err, ErrUserNotFound)
}

func (r *deviceRepository) IsBoundTo(ctx context.Context, deviceID string, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Device{}).
		Where("device_id = ? AND user_id = ?", deviceID, userID).
		Count(&count).Error
	return count > 0, translate(err, ErrUserNotFound)
}

func (r *deviceRepository) IsBlocked(ctx context.Context, deviceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Device{}).
		Where("device_id = ? AND is_blocked = ?", deviceID, true).
		Count(&count).Error
	return count > 0, translate(err, ErrUserNotFound)
}

// Register records the binding, refreshing the last IP if it already exists.
func (r *deviceRepository) Register(ctx context.Context, device *models.Device) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_ip", "platform", "updated_at"}),
	}).Create(device).Error
	return translate(err, ErrUserNotFound)
}
